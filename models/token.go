package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT access token'ın payload'ı.
//
// models paketinde tanımlıdır çünkü birden fazla katman (services, ws,
// middleware) tarafından kullanılır — circular dependency'yi önler.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair, login/refresh sonucu dönen token çifti.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
