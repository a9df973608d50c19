package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 60
	requestTimeout    = 5 * time.Second
	binaryMarker      = 0xFF
)

const internalErrorText = "Internal server error"

// validationErrors reach the client verbatim
var validationErrors = []error{
	ErrInvalidSession, ErrProfileNotFound, ErrUsernameTaken, ErrBadCredentials,
	ErrNotEnoughMoney, ErrHullNotFound, ErrHullOwned, ErrHullNotOwned, ErrHullMaxLevel,
	ErrGunNotFound, ErrGunOwned, ErrGunNotOwned, ErrGunMaxLevel,
	ErrUsernameRequired, ErrUsernameLength, ErrUsernameChars, ErrPasswordLength,
	ErrTooManyAttempts, ErrBattleFull,
}

// clientMessage returns the text shown to the player for err
func clientMessage(err error) (string, bool) {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return v.Error(), true
		}
	}
	return internalErrorText, false
}

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	log        zerolog.Logger
	msgCount   int
	msgResetAt time.Time

	// profileID is set once join/register/login succeeds; playerID while in battle
	profileID string
	playerID  string
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		log:        hub.log.With().Str("remote", remoteAddr).Logger(),
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("ws read")
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.log.Warn().Msg("rate limit exceeded, disconnecting")
			break
		}

		in, err := DecodeIntent(message)
		if err != nil {
			c.log.Debug().Err(err).Msg("bad message")
			continue
		}
		c.dispatch(in)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			var err error
			if len(message) > 0 && message[0] == binaryMarker {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal outbound message")
		return
	}
	c.SendRaw(data)
}

// SendRaw queues a text frame. It reports false when the frame was dropped.
func (c *Client) SendRaw(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// SendBinary queues a binary frame, prefixed with a marker byte so
// WritePump can tell it from text
func (c *Client) SendBinary(data []byte) bool {
	msg := make([]byte, len(data)+1)
	msg[0] = binaryMarker
	copy(msg[1:], data)
	return c.SendRaw(msg)
}

func (c *Client) sendError(err error) {
	text, ok := clientMessage(err)
	if !ok {
		c.log.Error().Err(err).Msg("request failed")
	}
	c.SendJSON(errorMsg(text))
}

// dispatch routes one decoded intent
func (c *Client) dispatch(in Intent) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	game := c.hub.game
	switch m := in.(type) {
	case *JoinIntent:
		c.handleJoin(ctx, m)
	case *RegisterIntent:
		c.handleRegister(ctx, m)
	case *LoginIntent:
		c.handleLogin(ctx, m)
	case *JoinBattleIntent:
		c.handleJoinBattle(ctx, m)
	case *LeaveBattleIntent:
		c.leaveBattle()
	case *MoveIntent:
		if id := c.activePlayer(); id != "" {
			game.HandleMove(id, m.Direction)
		}
	case *RotateIntent:
		if id := c.activePlayer(); id != "" {
			game.HandleRotate(id, m.Angle)
		}
	case *RotateTurretIntent:
		if id := c.activePlayer(); id != "" {
			game.HandleRotateTurret(id, m.Angle)
		}
	case *ShootIntent:
		if id := c.activePlayer(); id != "" {
			game.HandleShoot(id)
		}
	case *InteractIntent:
		if id := c.activePlayer(); id != "" {
			game.HandleInteract(id)
		}
	case *GetGarageIntent:
		c.handleGetGarage(ctx, m)
	case *GarageIntent:
		c.handleGarage(ctx, m)
	case *GetLeaderboardIntent:
		c.handleLeaderboard(ctx, m)
	}
}

func (c *Client) handleJoin(ctx context.Context, m *JoinIntent) {
	p, token, err := c.hub.auth.Guest(ctx, m.Username)
	if err != nil {
		c.sendError(err)
		return
	}
	c.profileID = p.ID
	c.SendJSON(WelcomeMsg{
		Type:         MsgWelcome,
		PlayerID:     p.ID,
		SessionToken: token,
		PlayerData:   newPlayerData(p.Public()),
	})
}

func (c *Client) handleRegister(ctx context.Context, m *RegisterIntent) {
	p, token, err := c.hub.auth.Register(ctx, m.Username, m.Password)
	if err != nil {
		c.sendError(err)
		return
	}
	c.authSuccess(p, token)
}

func (c *Client) handleLogin(ctx context.Context, m *LoginIntent) {
	p, token, err := c.hub.auth.Login(ctx, m.Username, m.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err)
		return
	}
	c.authSuccess(p, token)
}

func (c *Client) authSuccess(p *Profile, token string) {
	c.profileID = p.ID
	c.SendJSON(AuthSuccessMsg{
		Type:         MsgAuthSuccess,
		SessionToken: token,
		PlayerData:   newPlayerData(p.Public()),
	})
}

func (c *Client) handleJoinBattle(ctx context.Context, m *JoinBattleIntent) {
	p, err := c.hub.auth.Authenticate(ctx, m.SessionToken)
	if err != nil {
		c.sendError(err)
		return
	}
	if c.playerID != "" && c.playerID != p.ID {
		c.leaveBattle()
	}
	hull, gun := LoadoutFromProfile(p)
	player, err := c.hub.game.Join(JoinRequest{
		PlayerID:   p.ID,
		Username:   p.Username,
		XP:         p.XP,
		Hull:       hull,
		Gun:        gun,
		PlayerData: newPlayerData(p.Public()),
	}, c, m.Binary)
	if err != nil {
		c.sendError(err)
		return
	}
	c.profileID = p.ID
	c.playerID = player.ID
	c.hub.claimBattle(player.ID, c)
}

// activePlayer returns the battle player this connection drives, or "" when
// it is not in battle or another connection took the profile over
func (c *Client) activePlayer() string {
	if c.playerID == "" || !c.hub.ownsBattle(c.playerID, c) {
		return ""
	}
	return c.playerID
}

// leaveBattle removes this connection's player, unless another connection
// has since joined with the same profile
func (c *Client) leaveBattle() {
	if c.playerID == "" {
		return
	}
	if c.hub.releaseBattle(c.playerID, c) {
		c.hub.game.Leave(c.playerID)
	}
	c.playerID = ""
}

func (c *Client) handleGetGarage(ctx context.Context, m *GetGarageIntent) {
	p, err := c.hub.auth.Authenticate(ctx, m.SessionToken)
	if err != nil {
		c.sendError(err)
		return
	}
	c.SendJSON(GarageDataMsg{
		Type:       MsgGarageData,
		Hulls:      Hulls,
		Guns:       Guns,
		PlayerData: newPlayerData(p.Public()),
	})
}

func (c *Client) handleGarage(ctx context.Context, m *GarageIntent) {
	p, err := c.hub.auth.Authenticate(ctx, m.SessionToken)
	if err != nil {
		c.sendError(err)
		return
	}
	garage := c.hub.garage

	switch m.Kind {
	case MsgBuyHull, MsgBuyGun:
		var updated *Profile
		if m.Kind == MsgBuyHull {
			updated, err = garage.BuyHull(ctx, p.ID, m.HullID)
		} else {
			updated, err = garage.BuyGun(ctx, p.ID, m.GunID)
		}
		if err != nil {
			c.sendError(err)
			return
		}
		c.SendJSON(PurchaseResultMsg{
			Type:       MsgPurchaseResult,
			Success:    true,
			Message:    "Purchase successful",
			PlayerData: newPlayerData(updated.Public()),
		})

	case MsgUpgradeHull, MsgUpgradeGun:
		var res UpgradeResult
		if m.Kind == MsgUpgradeHull {
			res, err = garage.UpgradeHull(ctx, p.ID, m.HullID)
		} else {
			res, err = garage.UpgradeGun(ctx, p.ID, m.GunID)
		}
		if err != nil {
			c.sendError(err)
			return
		}
		c.SendJSON(UpgradeResultMsg{
			Type:       MsgUpgradeResult,
			Success:    true,
			Message:    "Upgrade successful",
			NewLevel:   res.NewLevel,
			Cost:       res.Cost,
			PlayerData: newPlayerData(res.Profile.Public()),
		})

	case MsgEquipHull, MsgEquipGun:
		var updated *Profile
		if m.Kind == MsgEquipHull {
			updated, err = garage.EquipHull(ctx, p.ID, m.HullID)
		} else {
			updated, err = garage.EquipGun(ctx, p.ID, m.GunID)
		}
		if err != nil {
			c.sendError(err)
			return
		}
		c.SendJSON(EquipResultMsg{
			Type:       MsgEquipResult,
			Success:    true,
			Message:    "Equipped",
			PlayerData: newPlayerData(updated.Public()),
		})
	}
}

func (c *Client) handleLeaderboard(ctx context.Context, m *GetLeaderboardIntent) {
	entries, err := c.hub.store.Leaderboard(ctx, m.SortBy, m.Limit)
	if err != nil {
		c.sendError(err)
		return
	}
	c.SendJSON(LeaderboardMsg{Type: MsgLeaderboard, Entries: entries})
}
