package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
	"github.com/Niladri080/Chat-App/pkg/ratelimit"
	"github.com/Niladri080/Chat-App/services"
)

// MessageHandler, mesaj endpoint'lerini yöneten struct.
type MessageHandler struct {
	messageService services.MessageService
	sendLimiter    *ratelimit.Limiter
}

// NewMessageHandler, constructor.
// sendLimiter: kullanıcı bazlı flood koruması. nil ise devre dışı.
func NewMessageHandler(messageService services.MessageService, sendLimiter *ratelimit.Limiter) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		sendLimiter:    sendLimiter,
	}
}

// SidebarUsers godoc
// GET /api/messages/users
// Diğer kullanıcıları okunmamış mesaj sayılarıyla döner.
func (h *MessageHandler) SidebarUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	users, err := h.messageService.SidebarUsers(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, users)
}

// GetConversation godoc
// GET /api/messages/{id}
// {id} karşı tarafın kullanıcı ID'sidir. Konuşma dönerken karşı taraftan
// gelen okunmamış mesajlar seen olarak işaretlenir.
func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	otherUserID := r.PathValue("id")
	if otherUserID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "user id is required")
		return
	}

	messages, err := h.messageService.ListConversation(r.Context(), user.ID, otherUserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messages)
}

// MarkSeen godoc
// PUT /api/messages/mark/{id}
// {id} mesaj ID'sidir. Sadece mesajın alıcısı işaretleyebilir.
func (h *MessageHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	messageID := r.PathValue("id")
	if messageID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "message id is required")
		return
	}

	if err := h.messageService.MarkSeen(r.Context(), messageID, user.ID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "marked as seen"})
}

// Send godoc
// POST /api/messages/send/{id}
// {id} alıcının kullanıcı ID'sidir.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	// Flood koruması — kullanıcı bazlı, IP değil (aynı NAT arkasındaki
	// farklı kullanıcılar birbirini etkilememeli).
	if h.sendLimiter != nil && !h.sendLimiter.Allow(user.ID) {
		retryAfter := h.sendLimiter.RetryAfterSeconds(user.ID)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("sending too fast, please wait %s", ratelimit.FormatRetryMessage(retryAfter)))
		return
	}

	receiverID := r.PathValue("id")
	if receiverID == "" {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "receiver id is required")
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.messageService.Send(r.Context(), user.ID, receiverID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, msg)
}
