package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"delivery-storefront/storefront-svc/internal/domain"
)

const (
	keyAuthUser          = "auth-user"
	keyAuthAuthenticated = "auth-isAuthenticated"
	keyCart              = "cart"
)

func sessionKey(sessionID, name string) string {
	return "session:" + sessionID + ":" + name
}

// Session is the authenticated state of one client.
type Session struct {
	ID            string
	User          domain.PublicUser
	Authenticated bool
	Cart          *Cart
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Authenticated
}

type Claims struct {
	SessionID string      `json:"sid"`
	UserID    int         `json:"uid"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager starts, restores and ends sessions. Session state lives in
// Storage; clients only hold a signed token naming the session.
type SessionManager struct {
	store                 Storage
	secret                []byte
	ttl                   time.Duration
	clock                 Clock
	enforceSameRestaurant bool
}

type SessionOption func(*SessionManager)

func WithSessionClock(clock Clock) SessionOption {
	return func(m *SessionManager) { m.clock = clock }
}

func WithCartSameRestaurant(enforce bool) SessionOption {
	return func(m *SessionManager) { m.enforceSameRestaurant = enforce }
}

func NewSessionManager(store Storage, secret string, ttl time.Duration, opts ...SessionOption) *SessionManager {
	m := &SessionManager{store: store, secret: []byte(secret), ttl: ttl}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SessionManager) newSession(id string, user domain.PublicUser) *Session {
	s := &Session{ID: id, User: user, Authenticated: true}
	s.Cart = NewCart(s, WithSameRestaurantEnforced(m.enforceSameRestaurant))
	return s
}

// Start opens a fresh session for user with an empty cart and returns it
// with its signed token.
func (m *SessionManager) Start(ctx context.Context, user domain.PublicUser) (*Session, string, error) {
	session := m.newSession(uuid.NewString(), user)

	payload, err := json.Marshal(user)
	if err != nil {
		return nil, "", fmt.Errorf("encode session user: %w", err)
	}
	if err := m.store.Set(ctx, sessionKey(session.ID, keyAuthUser), string(payload)); err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	if err := m.store.Set(ctx, sessionKey(session.ID, keyAuthAuthenticated), "true"); err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	if err := m.SaveCart(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := m.sign(session)
	if err != nil {
		return nil, "", err
	}

	log.Info().Str("session_id", session.ID).Int("user_id", user.ID).Str("role", string(user.Role)).Msg("session started")
	return session, token, nil
}

func (m *SessionManager) sign(session *Session) (string, error) {
	now := m.clock.now()
	claims := Claims{
		SessionID: session.ID,
		UserID:    session.User.ID,
		Role:      session.User.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(session.User.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (m *SessionManager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.clock.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotAuthenticated, err)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: token carries no session", domain.ErrNotAuthenticated)
	}
	return claims, nil
}

// Restore reloads the session named by token. Stored state that cannot be
// decoded or does not match the token ends the session.
func (m *SessionManager) Restore(ctx context.Context, token string) (*Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	id := claims.SessionID

	authenticated, ok, err := m.store.Get(ctx, sessionKey(id, keyAuthAuthenticated))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	if !ok || authenticated != "true" {
		return nil, fmt.Errorf("%w: session %s ended", domain.ErrNotAuthenticated, id)
	}

	rawUser, ok, err := m.store.Get(ctx, sessionKey(id, keyAuthUser))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	var user domain.PublicUser
	if !ok || json.Unmarshal([]byte(rawUser), &user) != nil || user.ID != claims.UserID {
		return nil, m.implicitLogout(ctx, id, "stored user unreadable")
	}

	session := m.newSession(id, user)
	rawCart, ok, err := m.store.Get(ctx, sessionKey(id, keyCart))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	if ok && rawCart != "" {
		if err := json.Unmarshal([]byte(rawCart), session.Cart); err != nil {
			return nil, m.implicitLogout(ctx, id, "stored cart unreadable")
		}
	}
	return session, nil
}

func (m *SessionManager) implicitLogout(ctx context.Context, sessionID, reason string) error {
	log.Warn().Str("session_id", sessionID).Str("reason", reason).Msg("ending corrupt session")
	if err := m.Logout(ctx, sessionID); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrNotAuthenticated, reason)
}

// Logout removes every key of the session, cart included.
func (m *SessionManager) Logout(ctx context.Context, sessionID string) error {
	err := m.store.Remove(ctx,
		sessionKey(sessionID, keyAuthUser),
		sessionKey(sessionID, keyAuthAuthenticated),
		sessionKey(sessionID, keyCart),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	log.Info().Str("session_id", sessionID).Msg("session ended")
	return nil
}

// End logs the session out and resets its in-memory state.
func (m *SessionManager) End(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("nil session")
	}
	if err := m.Logout(ctx, session.ID); err != nil {
		return err
	}
	session.Authenticated = false
	session.User = domain.PublicUser{}
	if session.Cart != nil {
		session.Cart.reset()
	}
	return nil
}

func (m *SessionManager) SaveCart(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session.Cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := m.store.Set(ctx, sessionKey(session.ID, keyCart), string(payload)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	return nil
}

var _ SessionManagerInterface = (*SessionManager)(nil)

type sessionCtxKey struct{}

func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

func SessionFrom(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return session, ok && session != nil
}
