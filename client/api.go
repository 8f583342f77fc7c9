// Package client, chat backend'i için Go SDK'sıdır.
//
// Üç parçadan oluşur:
//   - API: HTTP endpoint'leri için typed wrapper
//   - Socket: WebSocket bağlantısı (heartbeat, reconnect, event dispatch)
//   - Conversation: gelen event'ler ile fetch sonuçlarını tek tutarlı
//     görünümde birleştiren reconciler
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/services"
)

// API, HTTP endpoint'lerine erişen client.
type API struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewAPI, yeni bir API client'ı oluşturur.
// baseURL: server kök adresi (ör: http://localhost:8080).
func NewAPI(baseURL string) *API {
	return &API{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken, sonraki isteklerde kullanılacak access token'ı ayarlar.
func (a *API) SetToken(token string) {
	a.token = token
}

// apiEnvelope, server'ın standart {success, data, error} response zarfı.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// APIError, başarısız bir API çağrısının detayı.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Signup, yeni hesap oluşturur ve token'ı client'a set eder.
func (a *API) Signup(ctx context.Context, req *models.SignupRequest) (*services.AuthTokens, error) {
	var tokens services.AuthTokens
	if err := a.do(ctx, http.MethodPost, "/api/auth/signup", req, &tokens); err != nil {
		return nil, err
	}
	a.token = tokens.AccessToken
	return &tokens, nil
}

// Login, giriş yapar ve token'ı client'a set eder.
func (a *API) Login(ctx context.Context, email, password string) (*services.AuthTokens, error) {
	req := &models.LoginRequest{Email: email, Password: password}
	var tokens services.AuthTokens
	if err := a.do(ctx, http.MethodPost, "/api/auth/login", req, &tokens); err != nil {
		return nil, err
	}
	a.token = tokens.AccessToken
	return &tokens, nil
}

// Refresh, refresh token ile yeni bir token çifti alır.
func (a *API) Refresh(ctx context.Context, refreshToken string) (*services.AuthTokens, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var tokens services.AuthTokens
	if err := a.do(ctx, http.MethodPost, "/api/auth/refresh", body, &tokens); err != nil {
		return nil, err
	}
	a.token = tokens.AccessToken
	return &tokens, nil
}

// Check, mevcut access token ile oturumu doğrular ve kullanıcıyı döner.
func (a *API) Check(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.do(ctx, http.MethodGet, "/api/auth/check", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SidebarUsers, diğer kullanıcıları okunmamış sayılarıyla getirir.
func (a *API) SidebarUsers(ctx context.Context) ([]models.SidebarUser, error) {
	var users []models.SidebarUser
	if err := a.do(ctx, http.MethodGet, "/api/messages/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetConversation, karşı tarafla olan tüm mesajları getirir.
// Server bu çağrıda karşı taraftan gelen okunmamışları seen işaretler.
func (a *API) GetConversation(ctx context.Context, otherUserID string) ([]models.Message, error) {
	var messages []models.Message
	path := "/api/messages/" + url.PathEscape(otherUserID)
	if err := a.do(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage, alıcıya mesaj gönderir.
func (a *API) SendMessage(ctx context.Context, receiverID string, req *models.SendMessageRequest) (*models.Message, error) {
	var msg models.Message
	path := "/api/messages/send/" + url.PathEscape(receiverID)
	if err := a.do(ctx, http.MethodPost, path, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkSeen, tek bir mesajı seen olarak işaretler.
func (a *API) MarkSeen(ctx context.Context, messageID string) error {
	path := "/api/messages/mark/" + url.PathEscape(messageID)
	return a.do(ctx, http.MethodPut, path, nil, nil)
}

// do, request'i gönderir ve {success, data, error} zarfını çözer.
func (a *API) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !envelope.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}
