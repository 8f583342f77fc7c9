// Package services, business logic katmanını barındırır.
//
// Service, Handler (HTTP) ile Repository (DB) arasında oturur. Tüm iş
// kuralları buradadır: şifre hash'leme, JWT üretimi, seen mantığı, delivery.
// Service ASLA http.Request/Response bilmez ve ASLA doğrudan SQL çalıştırmaz.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
	"github.com/Niladri080/Chat-App/pkg/email"
	"github.com/Niladri080/Chat-App/repository"
)

// resetTokenTTL, şifre sıfırlama link'inin geçerlilik süresi.
const resetTokenTTL = 20 * time.Minute

// AuthService interface'i — dışarıya açık API.
// Handler bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*AuthTokens, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	// ForgotPassword, reset token üretir ve email'ler. Email kayıtlı değilse
	// de nil döner — hesap varlığı dışarıya sızdırılmaz.
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}

// AuthTokens, login/signup sonrası dönen token çifti + kullanıcı.
type AuthTokens struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	resetRepo   repository.ResetTokenRepository
	uploads     UploadService
	emailSender email.EmailSender // nil olabilir — email devre dışıysa sadece log'lanır
	jwtSecret   []byte
	accessExp   time.Duration
	refreshExp  time.Duration
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	resetRepo repository.ResetTokenRepository,
	uploads UploadService,
	emailSender email.EmailSender,
	jwtSecret string,
	accessExpMinutes int,
	refreshExpDays int,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		uploads:     uploads,
		emailSender: emailSender,
		jwtSecret:   []byte(jwtSecret),
		accessExp:   time.Duration(accessExpMinutes) * time.Minute,
		refreshExp:  time.Duration(refreshExpDays) * 24 * time.Hour,
	}
}

// Signup, yeni kullanıcı kaydı oluşturur ve token çifti döner.
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Password: string(hash),
		Bio:      req.Bio,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir
	}

	return s.generateTokens(ctx, user)
}

// Login, email + şifre ile giriş yapar.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Hangi alanın yanlış olduğu söylenmez — hesap varlığı sızdırılmaz.
			return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrUnauthorized)
	}

	return s.generateTokens(ctx, user)
}

// RefreshToken, süresi dolmuş access token'ı yenilemek için kullanılır.
// Eski refresh token iptal edilir, yenisi üretilir (rotation).
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	session, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := s.sessionRepo.Delete(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to delete old session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("%w: refresh token expired", pkg.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

// Logout, refresh token'ı iptal eder.
// Token zaten yoksa hata dönmez — logout idempotent'tir.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessionRepo.Delete(ctx, refreshToken)
}

// ValidateAccessToken, JWT access token'ı doğrular ve claims'i döner.
func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

// GetUserByID, auth check endpoint'i için kullanıcıyı döner.
func (s *authService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile, kullanıcının fullName/bio/profilePic alanlarını günceller.
// ProfilePic bir data URL ise önce diske kaydedilip kalıcı URL'e çevrilir.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfilePic != nil {
		url, err := s.uploads.SaveDataURL(*req.ProfilePic)
		if err != nil {
			return nil, err
		}
		user.ProfilePic = url
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ForgotPassword, şifre sıfırlama akışını başlatır.
func (s *authService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Email kayıtlı değil — yine başarılı dön, hesap varlığı sızdırılmaz.
			log.Printf("[auth] password reset requested for unknown email")
			return nil
		}
		return err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	plaintext := hex.EncodeToString(tokenBytes)

	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashToken(plaintext),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	if s.emailSender == nil {
		log.Printf("[auth] email disabled, skipping password reset mail for user %s", user.ID)
		return nil
	}

	if err := s.emailSender.SendPasswordReset(ctx, user.Email, plaintext); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrInternal, err.Error())
	}

	return nil
}

// ResetPassword, geçerli bir reset token ile yeni şifre belirler.
// Token tek kullanımlıktır ve kullanıcının tüm oturumları iptal edilir.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	token, err := s.resetRepo.GetByTokenHash(ctx, hashToken(req.Token))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrUnauthorized)
		}
		return err
	}

	if token.Used || time.Now().After(token.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrUnauthorized)
	}

	if err := s.resetRepo.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Yarış: başka bir istek token'ı bizden önce kullandı.
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrUnauthorized)
		}
		return err
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, token.UserID, string(newHash)); err != nil {
		return err
	}

	// Çalınmış olabilecek oturumların tamamı kapatılır.
	return s.sessionRepo.DeleteByUserID(ctx, token.UserID)
}

// ─── Private Helpers ───

func (s *authService) generateTokens(ctx context.Context, user *models.User) (*AuthTokens, error) {
	now := time.Now()
	accessClaims := &models.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-app",
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshString := hex.EncodeToString(refreshBytes)

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: refreshString,
		ExpiresAt:    now.Add(s.refreshExp),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthTokens{
		AccessToken:  accessString,
		RefreshToken: refreshString,
		User:         *user,
	}, nil
}

// hashToken, reset token'ın DB'de saklanan SHA256 hash'ini üretir.
func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
