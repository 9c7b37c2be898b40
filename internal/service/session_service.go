package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService emite y valida los tokens de sesión del dueño humano.
// La sesión vive solo en el token que guarda el cliente; el servidor
// no persiste estado de sesión.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// OwnerClaims son los claims de una sesión de dueño verificada vía OAuth.
type OwnerClaims struct {
	XID       string `json:"xid"`
	XUsername string `json:"xusr"`
	XName     string `json:"xname,omitempty"`
	Verified  bool   `json:"verified"`
	jwt.RegisteredClaims
}

var ErrSessionInvalid = errors.New("session invalid")

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "clawdx",
	}
}

// TTL devuelve la vigencia configurada de la sesión.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// IssueOwnerSession firma un token de sesión para una identidad externa
// recién verificada por el callback OAuth.
func (s *SessionService) IssueOwnerSession(identity OwnerIdentity) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMisconfigured
	}

	now := time.Now().UTC()
	claims := OwnerClaims{
		XID:       identity.ID,
		XUsername: identity.Username,
		XName:     identity.Name,
		Verified:  identity.Verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   identity.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseOwnerSession valida un token de sesión y devuelve sus claims.
func (s *SessionService) ParseOwnerSession(tokenStr string) (OwnerClaims, error) {
	if len(s.secret) == 0 {
		return OwnerClaims{}, ErrMisconfigured
	}

	var claims OwnerClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSessionInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil || !token.Valid {
		return OwnerClaims{}, ErrSessionInvalid
	}
	return claims, nil
}
