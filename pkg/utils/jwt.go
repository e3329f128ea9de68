package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Read per call, not at init: godotenv loads after package init.
func jwtKey() []byte { return []byte(os.Getenv("JWT_SECRET")) }

type Claims struct {
	ShopkeeperID string `json:"shopkeeper_id"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

func CreateToken(shopkeeperID string, role string) (string, error) {
	claims := &Claims{
		ShopkeeperID: shopkeeperID,
		Role:         role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey(), nil
	})

	if err != nil || !token.Valid {
		return nil, err
	}

	return claims, nil
}
