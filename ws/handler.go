package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Niladri080/Chat-App/models"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için kullandığı interface.
//
// services.AuthService yerine kendi interface'imizi tanımlıyoruz çünkü
// services paketi ws.EventPublisher'ı kullanır — ws'in services'e bağımlı
// olması circular dependency oluştururdu. Handler'ın zaten sadece
// ValidateAccessToken'a ihtiyacı var.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS kontrolü HTTP katmanında yapılır — upgrade her origin'e açık.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub            *Hub
	tokenValidator TokenValidator
}

// NewHandler, yeni bir WebSocket handler oluşturur.
func NewHandler(hub *Hub, tokenValidator TokenValidator) *Handler {
	return &Handler{
		hub:            hub,
		tokenValidator: tokenValidator,
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı Hub'a kaydeder.
//
// Token URL query parameter'ı olarak gelir (ws://server/ws?token=JWT) —
// tarayıcılar WebSocket handshake'inde custom header gönderemez.
// Token yoksa veya geçersizse bağlantı upgrade EDİLMEDEN 401 ile reddedilir.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", claims.UserID, err)
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBufferSize),
	}

	h.hub.register <- client

	// WritePump ayrı goroutine'de; ReadPump bu goroutine'de bloklar —
	// aksi halde handler hemen döner ve bağlantı sonlanırdı.
	go client.WritePump()
	client.ReadPump()
}
