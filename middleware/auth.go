// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Go'da middleware bir fonksiyondur: func(next http.Handler) http.Handler.
// Middleware kendi işini yapar (token doğrula), sonra next'i çağırır.
// Hata varsa next çağrılmaz — request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Niladri080/Chat-App/handlers"
	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
	"github.com/Niladri080/Chat-App/pkg/cache"
	"github.com/Niladri080/Chat-App/repository"
	"github.com/Niladri080/Chat-App/services"
)

// userCacheTTL: her istekte DB'ye gitmemek için kullanıcı kaydı kısa süre
// cache'lenir. Silinen kullanıcının token'ı en fazla bu süre daha çalışır;
// profil değişikliği de aynı gecikmeyle görünür.
const userCacheTTL = 30 * time.Second

// AuthMiddleware, JWT token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
	users       *cache.TTLCache[string, models.User]
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
		users:       cache.New[string, models.User](userCacheTTL, 5*time.Minute),
	}
}

// Close, cache'in cleanup goroutine'ini durdurur (graceful shutdown).
func (m *AuthMiddleware) Close() {
	m.users.Close()
}

// Require, JWT token zorunlu kılan middleware.
// Header formatı: Authorization: Bearer <token>. Token yoksa veya
// geçersizse 401 döner, next çağrılmaz.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.lookupUser(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// lookupUser, kullanıcıyı önce cache'ten, yoksa DB'den getirir.
// Token geçerli ama kullanıcı silinmiş olabilir — DB kontrolü bu yüzden var.
// Her request kendi kopyasını alır, cache'teki değer paylaşılmaz.
func (m *AuthMiddleware) lookupUser(ctx context.Context, userID string) (*models.User, error) {
	if cached, ok := m.users.Get(userID); ok {
		return &cached, nil
	}

	user, err := m.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Hash ne context'te ne cache'te taşınmamalı
	user.Password = ""
	m.users.Set(userID, *user)

	return user, nil
}
