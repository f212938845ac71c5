package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the HS256 token pair the code exchange
// hands out: a short-lived access token and a long-lived refresh token.
type TokenService struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue returns a (refresh, access) pair bound to the user id.
func (s *TokenService) Issue(userID primitive.ObjectID) (refresh, access string, err error) {
	refresh, err = s.sign(userID, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	access, err = s.sign(userID, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	return refresh, access, nil
}

func (s *TokenService) sign(userID primitive.ObjectID, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify parses a token and returns the user id it is bound to.
func (s *TokenService) Verify(tokenString string) (primitive.ObjectID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid token claims")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}
