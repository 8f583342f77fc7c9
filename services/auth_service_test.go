package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
)

type mockSessionRepo struct {
	sessions map[string]*models.Session // refreshToken → session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*models.Session)}
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	session.ID = fmt.Sprintf("sess-%d", len(m.sessions)+1)
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockSessionRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	s, ok := m.sessions[refreshToken]
	if !ok {
		return nil, fmt.Errorf("%w: session not found", pkg.ErrNotFound)
	}
	return s, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type mockResetRepo struct {
	tokens map[string]*models.PasswordResetToken // tokenHash → token
}

func newMockResetRepo() *mockResetRepo {
	return &mockResetRepo{tokens: make(map[string]*models.PasswordResetToken)}
}

func (m *mockResetRepo) Create(ctx context.Context, token *models.PasswordResetToken) error {
	token.ID = fmt.Sprintf("reset-%d", len(m.tokens)+1)
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockResetRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	t, ok := m.tokens[tokenHash]
	if !ok {
		return nil, fmt.Errorf("%w: token not found", pkg.ErrNotFound)
	}
	return t, nil
}

func (m *mockResetRepo) MarkUsed(ctx context.Context, id string) error {
	for _, t := range m.tokens {
		if t.ID == id && !t.Used {
			t.Used = true
			return nil
		}
	}
	return fmt.Errorf("%w: token not found", pkg.ErrNotFound)
}

func (m *mockResetRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

// mockEmailSender, gönderilen reset token'larını kaydeder.
type mockEmailSender struct {
	sentTo    []string
	lastToken string
}

func (m *mockEmailSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	m.sentTo = append(m.sentTo, toEmail)
	m.lastToken = token
	return nil
}

type authFixture struct {
	svc      AuthService
	users    *mockUserRepo
	sessions *mockSessionRepo
	resets   *mockResetRepo
	email    *mockEmailSender
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    newMockUserRepo(),
		sessions: newMockSessionRepo(),
		resets:   newMockResetRepo(),
		email:    &mockEmailSender{},
	}
	f.svc = NewAuthService(f.users, f.sessions, f.resets,
		&mockUploads{savedURL: "/api/uploads/pic.png"}, f.email, "test-secret", 15, 7)
	return f
}

func validSignup() *models.SignupRequest {
	return &models.SignupRequest{
		FullName: "Alice Wonder",
		Email:    "alice@test.com",
		Password: "supersecret",
	}
}

func TestAuthService_Signup(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()

	tokens, err := f.svc.Signup(context.Background(), validSignup())

	req.NoError(err)
	req.NotEmpty(tokens.AccessToken)
	req.NotEmpty(tokens.RefreshToken)
	req.Equal("alice@test.com", tokens.User.Email)

	// Şifre bcrypt hash olarak saklanır, plaintext değil
	stored := f.users.users[tokens.User.ID]
	req.NotEqual("supersecret", stored.Password)
	req.Len(f.sessions.sessions, 1)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)

	_, err = f.svc.Signup(ctx, validSignup())
	req.ErrorIs(err, pkg.ErrAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)

	tokens, err := f.svc.Login(ctx, &models.LoginRequest{
		Email:    "alice@test.com",
		Password: "supersecret",
	})
	req.NoError(err)
	req.NotEmpty(tokens.AccessToken)

	// Token doğrulanabilir olmalı
	claims, err := f.svc.ValidateAccessToken(tokens.AccessToken)
	req.NoError(err)
	req.Equal(tokens.User.ID, claims.UserID)
	req.Equal("alice@test.com", claims.Email)
}

func TestAuthService_Login_WrongCredentials(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)

	// Yanlış şifre ve bilinmeyen email aynı hatayı döner
	_, errPass := f.svc.Login(ctx, &models.LoginRequest{Email: "alice@test.com", Password: "wrongpass"})
	_, errMail := f.svc.Login(ctx, &models.LoginRequest{Email: "ghost@test.com", Password: "supersecret"})

	req.ErrorIs(errPass, pkg.ErrUnauthorized)
	req.ErrorIs(errMail, pkg.ErrUnauthorized)
	req.Equal(errPass.Error(), errMail.Error(), "hesap varlığı hata mesajından anlaşılmamalı")
}

func TestAuthService_RefreshToken_Rotation(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	tokens, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)

	rotated, err := f.svc.RefreshToken(ctx, tokens.RefreshToken)
	req.NoError(err)
	req.NotEqual(tokens.RefreshToken, rotated.RefreshToken)

	// Eski token artık geçersiz
	_, err = f.svc.RefreshToken(ctx, tokens.RefreshToken)
	req.ErrorIs(err, pkg.ErrUnauthorized)
}

func TestAuthService_Logout_IsIdempotent(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	tokens, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)

	req.NoError(f.svc.Logout(ctx, tokens.RefreshToken))
	req.NoError(f.svc.Logout(ctx, tokens.RefreshToken), "ikinci logout hata dönmemeli")

	_, err = f.svc.RefreshToken(ctx, tokens.RefreshToken)
	req.ErrorIs(err, pkg.ErrUnauthorized)
}

func TestAuthService_ValidateAccessToken_Garbage(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.ValidateAccessToken("not.a.jwt")
	require.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	tokens, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)

	// When: şifre sıfırlama istenir
	err = f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "alice@test.com"})
	req.NoError(err)
	req.Equal([]string{"alice@test.com"}, f.email.sentTo)
	req.NotEmpty(f.email.lastToken)

	// DB'de plaintext token saklanmaz
	_, hasPlaintext := f.resets.tokens[f.email.lastToken]
	req.False(hasPlaintext)

	// When: token ile yeni şifre belirlenir
	err = f.svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:       f.email.lastToken,
		NewPassword: "brandnewpass",
	})
	req.NoError(err)

	// Then: yeni şifre geçerli, eski değil, tüm oturumlar kapalı
	_, err = f.svc.Login(ctx, &models.LoginRequest{Email: "alice@test.com", Password: "brandnewpass"})
	req.NoError(err)
	_, err = f.svc.Login(ctx, &models.LoginRequest{Email: "alice@test.com", Password: "supersecret"})
	req.ErrorIs(err, pkg.ErrUnauthorized)
	_, err = f.svc.RefreshToken(ctx, tokens.RefreshToken)
	req.ErrorIs(err, pkg.ErrUnauthorized)
}

func TestAuthService_ResetToken_SingleUse(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)
	req.NoError(f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "alice@test.com"}))

	reset := &models.ResetPasswordRequest{Token: f.email.lastToken, NewPassword: "brandnewpass"}
	req.NoError(f.svc.ResetPassword(ctx, reset))

	// Aynı token ikinci kez kullanılamaz
	second := &models.ResetPasswordRequest{Token: f.email.lastToken, NewPassword: "anotherpass1"}
	req.ErrorIs(f.svc.ResetPassword(ctx, second), pkg.ErrUnauthorized)
}

func TestAuthService_ResetToken_Expired(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)
	req.NoError(f.svc.ForgotPassword(ctx, &models.ForgotPasswordRequest{Email: "alice@test.com"}))

	// Token süresini geçmişe çek
	for _, token := range f.resets.tokens {
		token.ExpiresAt = time.Now().Add(-time.Minute)
	}

	err = f.svc.ResetPassword(ctx, &models.ResetPasswordRequest{
		Token:       f.email.lastToken,
		NewPassword: "brandnewpass",
	})
	req.ErrorIs(err, pkg.ErrUnauthorized)
}

func TestAuthService_ForgotPassword_UnknownEmailNotRevealed(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()

	// Kayıtlı olmayan email de başarılı döner, mail gitmez
	err := f.svc.ForgotPassword(context.Background(), &models.ForgotPasswordRequest{Email: "ghost@test.com"})
	req.NoError(err)
	req.Empty(f.email.sentTo)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture()
	ctx := context.Background()

	tokens, err := f.svc.Signup(ctx, validSignup())
	req.NoError(err)

	newName := "Alice W."
	newBio := "yeni bio"
	pic := "data:image/png;base64,iVBOR"
	user, err := f.svc.UpdateProfile(ctx, tokens.User.ID, &models.UpdateProfileRequest{
		FullName:   &newName,
		Bio:        &newBio,
		ProfilePic: &pic,
	})

	req.NoError(err)
	req.Equal("Alice W.", user.FullName)
	req.Equal("yeni bio", user.Bio)
	req.Equal("/api/uploads/pic.png", user.ProfilePic, "data URL kalıcı URL'e çevrilmeli")
}
