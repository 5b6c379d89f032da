package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tokens are minted by the external identity provider: HS256, the user id in
// the subject claim. The audience must match the one configured there.

func GenerateToken(userID uuid.UUID, secret []byte, audience string, ttl time.Duration) (string, error) {
	claims := jwtlib.RegisteredClaims{
		Subject:   userID.String(),
		Audience:  jwtlib.ClaimStrings{audience},
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwtlib.NewNumericDate(time.Now()),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(tokenString string, secret []byte, audience string) (uuid.UUID, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &jwtlib.RegisteredClaims{}, func(token *jwtlib.Token) (interface{}, error) {
		if token.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwtlib.WithAudience(audience))
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := token.Claims.(*jwtlib.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("invalid subject claim")
	}
	return userID, nil
}
