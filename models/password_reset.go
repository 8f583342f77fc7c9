// Package models — password reset token ve ilgili request struct'ları.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// PasswordResetToken, şifre sıfırlama token'ının DB kaydı.
//
// TokenHash: token'ın SHA256 hash'i (hex encoded). Plaintext token kullanıcıya
// email ile gönderilir, DB'de sadece hash saklanır — DB sızsa bile tokenlar
// kullanılamaz.
type PasswordResetToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

// ForgotPasswordRequest, "şifremi unuttum" isteği.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate, ForgotPasswordRequest geçerlilik kontrolü.
func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !isValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ResetPasswordRequest, şifre sıfırlama isteği.
// Token: email'deki link'ten alınan plaintext token.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Validate, ResetPasswordRequest geçerlilik kontrolü.
func (r *ResetPasswordRequest) Validate() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	if utf8.RuneCountInString(r.NewPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
