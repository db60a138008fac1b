package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JWT secret key, loaded from the environment in main.
var JwtKey []byte

// Token validity and issuer carried by every bearer credential.
const (
	TokenValidity = 10 * 24 * time.Hour
	TokenIssuer   = "eCommerce-backend"
)

// Claims represents the JWT claims: the user id and role.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.StandardClaims
}

// GenerateJWT issues a signed, time-limited bearer token for a user.
func GenerateJWT(userID, role string) (string, error) {
	claims := &Claims{
		ID:   userID,
		Role: role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(TokenValidity).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    TokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ParseJWT verifies a token string and returns its claims. Any malformed,
// expired, or badly signed token yields an error.
func ParseJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
