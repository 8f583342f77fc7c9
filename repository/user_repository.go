// Package repository, veritabanı erişim katmanını tanımlar.
//
// Service katmanı doğrudan SQL yazmaz — repository interface'i üzerinden
// çalışır. Interface sayesinde testlerde mock repository kullanılabilir ve
// SQLite'tan başka bir DB'ye geçiş sadece yeni bir implementasyon gerektirir.
package repository

import (
	"context"

	"github.com/Niladri080/Chat-App/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// ListOthers, verilen kullanıcı HARİÇ tüm kullanıcıları döner.
	// Sohbet listesi (sidebar) için kullanılır.
	ListOthers(ctx context.Context, excludeUserID string) ([]models.User, error)
	// UpdateProfile, full_name, bio ve profile_pic alanlarını günceller.
	UpdateProfile(ctx context.Context, user *models.User) error
	// UpdatePassword, kullanıcının bcrypt hash'ini günceller (reset-password akışı).
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
}
