// Package models, uygulamanın domain modellerini tanımlar.
//
// Model, veritabanındaki bir tablonun Go karşılığıdır ve aynı zamanda
// API'den gelen/giden verilerin şeklini belirler. JSON tag'leri frontend
// ile uyum için camelCase'dir (senderId, fullName, profilePic...).
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// User, bir kullanıcıyı temsil eder.
type User struct {
	ID         string    `json:"_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Password   string    `json:"-"` // bcrypt hash — API response'a asla dahil edilmez
	ProfilePic string    `json:"profilePic"`
	Bio        string    `json:"bio"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SignupRequest, kayıt olurken frontend'den gelen veri.
// Password plaintext gelir — hash'leme service katmanında yapılır.
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

// Validate, SignupRequest'in geçerli olup olmadığını kontrol eder.
//   - FullName: 2-64 karakter
//   - Email: basit format kontrolü (@ ve nokta)
//   - Password: minimum 8 karakter
//   - Bio: opsiyonel, max 300 karakter
func (r *SignupRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	nameLen := utf8.RuneCountInString(r.FullName)
	if nameLen < 2 || nameLen > 64 {
		return fmt.Errorf("full name must be between 2 and 64 characters")
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if !isValidEmail(r.Email) {
		return fmt.Errorf("invalid email address")
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	r.Bio = strings.TrimSpace(r.Bio)
	if utf8.RuneCountInString(r.Bio) > 300 {
		return fmt.Errorf("bio must be at most 300 characters")
	}

	return nil
}

// LoginRequest, giriş yaparken frontend'den gelen veri.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// UpdateProfileRequest, profil güncellemesi için.
// Tüm field'lar opsiyonel — nil olan field güncellenmez.
type UpdateProfileRequest struct {
	FullName   *string `json:"fullName"`
	Bio        *string `json:"bio"`
	ProfilePic *string `json:"profilePic"` // data URL (base64) — upload service dosyaya çevirir
}

// Validate, UpdateProfileRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpdateProfileRequest) Validate() error {
	if r.FullName != nil {
		*r.FullName = strings.TrimSpace(*r.FullName)
		nameLen := utf8.RuneCountInString(*r.FullName)
		if nameLen < 2 || nameLen > 64 {
			return fmt.Errorf("full name must be between 2 and 64 characters")
		}
	}
	if r.Bio != nil {
		*r.Bio = strings.TrimSpace(*r.Bio)
		if utf8.RuneCountInString(*r.Bio) > 300 {
			return fmt.Errorf("bio must be at most 300 characters")
		}
	}
	if r.FullName == nil && r.Bio == nil && r.ProfilePic == nil {
		return fmt.Errorf("at least one field is required")
	}
	return nil
}

// SidebarUser, sohbet listesinde gösterilen kullanıcı + okunmamış mesaj sayısı.
type SidebarUser struct {
	User
	UnseenCount int `json:"unseenMessages"`
}

// isValidEmail, email formatını kabaca kontrol eder.
// Tam RFC 5322 validasyonu gereksiz — gerçek doğrulama email gönderimiyle olur.
func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(domain, "@")
}
