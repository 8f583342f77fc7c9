package repository

import (
	"context"

	"github.com/Niladri080/Chat-App/models"
)

// SessionRepository, refresh token oturumları için interface.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error)
	Delete(ctx context.Context, refreshToken string) error
	// DeleteByUserID, kullanıcının tüm oturumlarını siler (şifre sıfırlamada çağrılır).
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired, süresi dolmuş oturumları temizler. Periyodik çağrılır.
	DeleteExpired(ctx context.Context) (int64, error)
}
