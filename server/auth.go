package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL  = 7 * 24 * time.Hour
	bcryptCost       = 12
	minPasswordLen   = 4
	maxPasswordLen   = 100
	minUsernameLen   = 3
	maxUsernameLen   = 20
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
	guestNameRetries = 5
	jwtSecretSetting = "jwt_secret"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var (
	ErrUsernameRequired = errors.New("Username is required")
	ErrUsernameLength   = fmt.Errorf("Username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	ErrUsernameChars    = errors.New("Username can only contain letters, numbers and underscores")
	ErrPasswordLength   = fmt.Errorf("Password must be %d-%d characters", minPasswordLen, maxPasswordLen)
	ErrTooManyAttempts  = errors.New("Too many login attempts, try again later")
)

// Auth handles accounts and session tokens
type Auth struct {
	store     ProfileStore
	jwtSecret []byte
	ttl       time.Duration
	log       zerolog.Logger

	// login attempts per remote address
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

type sessionClaims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// NewAuth creates the auth service. An empty secret is loaded from the
// store, or generated and persisted there.
func NewAuth(ctx context.Context, store ProfileStore, secret string, ttl time.Duration, log zerolog.Logger) (*Auth, error) {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	a := &Auth{
		store:   store,
		ttl:     ttl,
		log:     log.With().Str("component", "auth").Logger(),
		rateMap: make(map[string]*rateEntry),
	}
	if secret != "" {
		a.jwtSecret = []byte(secret)
		return a, nil
	}
	b, err := loadOrCreateSecret(ctx, store)
	if err != nil {
		return nil, err
	}
	a.jwtSecret = b
	return a, nil
}

func loadOrCreateSecret(ctx context.Context, store ProfileStore) ([]byte, error) {
	h, err := store.Setting(ctx, jwtSecretSetting)
	if err != nil {
		return nil, fmt.Errorf("load jwt secret: %w", err)
	}
	if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
		return b, nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}
	if err := store.SetSetting(ctx, jwtSecretSetting, hex.EncodeToString(secret)); err != nil {
		return nil, fmt.Errorf("persist jwt secret: %w", err)
	}
	return secret, nil
}

// ValidateUsername trims and checks a username
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return "", ErrUsernameRequired
	case len(username) < minUsernameLen || len(username) > maxUsernameLen:
		return "", ErrUsernameLength
	case !usernameRe.MatchString(username):
		return "", ErrUsernameChars
	}
	return username, nil
}

// ValidatePassword checks password length
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrPasswordLength
	}
	return nil
}

// Register creates an account and returns its profile and session token
func (a *Auth) Register(ctx context.Context, username, password string) (*Profile, string, error) {
	username, err := ValidateUsername(username)
	if err != nil {
		return nil, "", err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	p := NewProfile(username, string(hash), false, time.Now())
	if err := a.store.CreateProfile(ctx, p); err != nil {
		return nil, "", err
	}
	a.log.Info().Str("player", p.ID).Str("username", username).Msg("account registered")
	return a.issue(p)
}

// Login checks credentials and returns the profile and a fresh token
func (a *Auth) Login(ctx context.Context, username, password, ip string) (*Profile, string, error) {
	if !a.checkRate(ip) {
		return nil, "", ErrTooManyAttempts
	}

	p, err := a.store.ProfileByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrProfileNotFound) {
		return nil, "", ErrBadCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if p.Guest || p.PassHash == "" {
		return nil, "", ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PassHash), []byte(password)); err != nil {
		return nil, "", ErrBadCredentials
	}
	return a.issue(p)
}

// Guest creates a throwaway profile. The requested name is used when it is
// valid and free, otherwise a generated Guest_xxxxxx name.
func (a *Auth) Guest(ctx context.Context, name string) (*Profile, string, error) {
	if n, err := ValidateUsername(name); err == nil {
		p := NewProfile(n, "", true, time.Now())
		err := a.store.CreateProfile(ctx, p)
		if err == nil {
			return a.issue(p)
		}
		if !errors.Is(err, ErrUsernameTaken) {
			return nil, "", err
		}
	}
	for i := 0; i < guestNameRetries; i++ {
		p := NewProfile(GenerateGuestName(), "", true, time.Now())
		err := a.store.CreateProfile(ctx, p)
		if err == nil {
			return a.issue(p)
		}
		if !errors.Is(err, ErrUsernameTaken) {
			return nil, "", err
		}
	}
	return nil, "", ErrUsernameTaken
}

// ValidateToken returns the profile id and username carried by a token
func (a *Auth) ValidateToken(tokenStr string) (string, string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", "", ErrInvalidSession
	}
	return claims.Subject, claims.Username, nil
}

// Authenticate resolves a token to its current profile
func (a *Auth) Authenticate(ctx context.Context, tokenStr string) (*Profile, error) {
	id, _, err := a.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	p, err := a.store.Profile(ctx, id)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, ErrInvalidSession
	}
	return p, err
}

func (a *Auth) issue(p *Profile) (*Profile, string, error) {
	token, err := a.generateToken(p.ID, p.Username)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return p, token, nil
}

func (a *Auth) generateToken(playerID, username string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}

// GenerateGuestName creates a guest name like "Guest_a3f2c1"
func GenerateGuestName() string {
	b := make([]byte, 3)
	rand.Read(b)
	return "Guest_" + hex.EncodeToString(b)
}
