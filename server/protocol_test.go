package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIntent(t *testing.T) {
	tests := []struct {
		raw  string
		want Intent
	}{
		{`{"type":"join","username":"bob"}`, &JoinIntent{Username: "bob"}},
		{`{"type":"register","username":"bob","password":"pw12"}`, &RegisterIntent{Username: "bob", Password: "pw12"}},
		{`{"type":"login","username":"bob","password":"pw12"}`, &LoginIntent{Username: "bob", Password: "pw12"}},
		{`{"type":"joinBattle","sessionToken":"tok","binary":true}`, &JoinBattleIntent{SessionToken: "tok", Binary: true}},
		{`{"type":"leaveBattle"}`, &LeaveBattleIntent{}},
		{`{"type":"move","direction":{"x":1,"y":-1}}`, &MoveIntent{Direction: Vec2{X: 1, Y: -1}}},
		{`{"type":"rotate","angle":1.5}`, &RotateIntent{Angle: 1.5}},
		{`{"type":"rotateTurret","angle":-0.5}`, &RotateTurretIntent{Angle: -0.5}},
		{`{"type":"shoot"}`, &ShootIntent{}},
		{`{"type":"interact"}`, &InteractIntent{}},
		{`{"type":"getGarage","sessionToken":"tok"}`, &GetGarageIntent{SessionToken: "tok"}},
		{`{"type":"buyHull","sessionToken":"tok","hullId":"hornet"}`, &GarageIntent{Kind: MsgBuyHull, SessionToken: "tok", HullID: "hornet"}},
		{`{"type":"upgradeGun","sessionToken":"tok","gunId":"railgun"}`, &GarageIntent{Kind: MsgUpgradeGun, SessionToken: "tok", GunID: "railgun"}},
		{`{"type":"getLeaderboard","sortBy":"kills","limit":10}`, &GetLeaderboardIntent{SortBy: "kills", Limit: 10}},
	}
	for _, tt := range tests {
		got, err := DecodeIntent([]byte(tt.raw))
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestDecodeIntentTypeMatchesMessage(t *testing.T) {
	for _, typ := range []string{MsgBuyHull, MsgBuyGun, MsgUpgradeHull, MsgUpgradeGun, MsgEquipHull, MsgEquipGun} {
		in, err := DecodeIntent([]byte(fmt.Sprintf(`{"type":%q}`, typ)))
		require.NoError(t, err)
		assert.Equal(t, typ, in.intentType())
	}
}

func TestDecodeIntentErrors(t *testing.T) {
	_, err := DecodeIntent([]byte(`{"type":"teleport"}`))
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = DecodeIntent([]byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = DecodeIntent([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeIntent([]byte(`{"type":"move","direction":"north"}`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownMessage)
}

func TestClientMessage(t *testing.T) {
	msg, ok := clientMessage(fmt.Errorf("buy hull: %w", ErrNotEnoughMoney))
	assert.True(t, ok)
	assert.Equal(t, "Not enough money", msg)

	msg, ok = clientMessage(ErrUsernameLength)
	assert.True(t, ok)
	assert.Equal(t, "Username must be 3-20 characters", msg)

	msg, ok = clientMessage(errors.New("database is locked"))
	assert.False(t, ok)
	assert.Equal(t, internalErrorText, msg)
}

func TestErrorMsgShape(t *testing.T) {
	b, err := json.Marshal(errorMsg("Invalid session"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"Invalid session"}`, string(b))
}

func TestPlayerDataFlattensProfile(t *testing.T) {
	p := &Profile{ID: "p1", Username: "bob", XP: 120, PassHash: "secret"}
	b, err := json.Marshal(newPlayerData(p.Public()))
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "bob", m["username"])
	assert.NotContains(t, string(b), "secret")
	rank := m["rank"].(map[string]interface{})
	assert.Equal(t, RankForXP(120).Name, rank["name"])
}
