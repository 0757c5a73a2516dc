package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the identity the calendar cares about: who the user is
// and whether they may manage events. Kind separates short-lived access
// tokens from the rotating refresh grants.
type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Kind   string `json:"kind"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

// RefreshGrant is one rotation's worth of refresh credential: the raw
// token goes into the cookie, the JTI keys the stored row.
type RefreshGrant struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue mints the access/refresh pair for one login or rotation.
func (m *Manager) Issue(userID, email, role string) (string, RefreshGrant, error) {
	access, _, _, err := m.sign(kindAccess, m.accessTTL, userID, email, role)

	if err != nil {
		return "", RefreshGrant{}, err
	}

	token, jti, expiresAt, err := m.sign(kindRefresh, m.refreshTTL, userID, email, role)

	if err != nil {
		return "", RefreshGrant{}, err
	}

	return access, RefreshGrant{Token: token, JTI: jti, ExpiresAt: expiresAt}, nil
}

func (m *Manager) sign(kind string, ttl time.Duration, userID, email, role string) (string, string, time.Time, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Kind:   kind,
		JTI:    jti,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)

	return signed, jti, expiresAt, err
}

func (m *Manager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(token, kindAccess)
}

func (m *Manager) VerifyRefresh(token string) (*Claims, error) {
	claims, err := m.verify(token, kindRefresh)

	if err != nil {
		return nil, err
	}

	if claims.JTI == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *Manager) verify(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// HS256 only; any other method is a forgery attempt
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}

		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)

	if !ok || !parsed.Valid || claims.Kind != kind {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// FingerprintRefresh is the HMAC persisted in refresh_tokens; the raw
// token never touches the database.
func (m *Manager) FingerprintRefresh(raw string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(raw))

	return hex.EncodeToString(mac.Sum(nil))
}
