package auth

import (
	"errors"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, malformed payload, expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the user id in the registered "sub" claim and a random
// token id in "jti".
type Claims struct {
	Role      user.Role `json:"role"`
	TokenType string    `json:"typ"`
	jwt.RegisteredClaims
}

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	UserID string
	Role   user.Role
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Issue(userID string, role user.Role) (string, error) {
	now := m.now().UTC()

	claims := Claims{
		Role:      role,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	if claims.TokenType != accessTokenType || claims.Subject == "" || !claims.Role.Valid() {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: claims.Subject, Role: claims.Role}, nil
}
