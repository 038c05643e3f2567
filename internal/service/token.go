package service

import (
	"errors"
	"fmt"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "climate-dashboard-api"

// sessionClaims binds a signed token to a server-side session. ID carries
// the session id and Subject the account id.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// tokenService signs and verifies session tokens with HS256
type tokenService struct {
	secret []byte
}

func newTokenService(secret []byte) *tokenService {
	return &tokenService{secret: secret}
}

// Issue signs a token for session. The token expires with the session.
func (t *tokenService) Issue(session *models.Session, role models.Role) (string, error) {
	claims := sessionClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.AccountID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry
func (t *tokenService) Parse(raw string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
