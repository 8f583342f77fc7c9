package models

import "time"

// Session, JWT refresh token oturumunu temsil eder.
//
// Access token kısa ömürlü (15dk), refresh token uzun ömürlü (7 gün).
// Refresh token'ları DB'de tutarak çalınan token revoke edilebilir ve
// logout'ta sadece ilgili oturum silinir.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	RefreshToken string    `json:"-"` // API'ye gönderilmez
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}
