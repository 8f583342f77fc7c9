package repository

import (
	"context"

	"github.com/Niladri080/Chat-App/models"
)

// ResetTokenRepository, şifre sıfırlama token'ları için interface.
// Token'lar DB'de SHA256 hash olarak saklanır — plaintext asla yazılmaz.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	// MarkUsed, token'ı kullanılmış olarak işaretler — tek kullanımlıktır.
	MarkUsed(ctx context.Context, id string) error
	// DeleteExpired, süresi dolmuş token'ları temizler. Periyodik çağrılır.
	DeleteExpired(ctx context.Context) (int64, error)
}
