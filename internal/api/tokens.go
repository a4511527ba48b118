package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/safar/go-storefront/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints bearer tokens whose lifetime mirrors the admin session.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

func (ti *TokenIssuer) Issue(sess *models.Session) (string, error) {
	claims := AdminClaims{
		Username: sess.User.Username,
		Role:     sess.User.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        loginID(sess),
			Subject:   sess.User.ID,
			IssuedAt:  jwt.NewNumericDate(sess.User.LoginTime),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (ti *TokenIssuer) Parse(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Role != models.RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// loginID identifies one login. IssuedAt only has second precision, so the
// token ID carries the full login time.
func loginID(sess *models.Session) string {
	return strconv.FormatInt(sess.User.LoginTime.UnixNano(), 10)
}

// issuedFor reports whether the claims were minted for sess rather than an
// earlier login.
func (c *AdminClaims) issuedFor(sess *models.Session) bool {
	if c.ID == "" || c.Subject != sess.User.ID {
		return false
	}
	return c.ID == loginID(sess)
}
