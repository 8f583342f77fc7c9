package ws

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"sync/atomic"
)

// EventPublisher, service katmanının WebSocket event'leri yayınlamak için
// kullandığı interface. Service'ler Hub'ın concrete struct'ına değil bu
// interface'e bağımlıdır — testlerde mock EventPublisher kullanılabilir.
type EventPublisher interface {
	BroadcastToUser(userID string, event Event)
	IsOnline(userID string) bool
	OnlineUserIDs() []string
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır.
//
// Hub.Run() goroutine'i register/unregister channel'larından okur:
// - register'dan yeni client gelirse → clients map'e ekle + presence broadcast
// - unregister'dan client gelirse → map'ten çıkar + presence broadcast
type Hub struct {
	// clients: userID → Client set. Bir kullanıcının birden fazla cihazı/tab'ı
	// olabilir — kullanıcı ancak TÜM bağlantıları kapandığında offline sayılır.
	clients map[string]map[*Client]bool

	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// seq: Her outbound event'e verilen artan sayaç.
	// atomic.Int64 — birden fazla goroutine güvenle Add çağırır.
	seq atomic.Int64
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// addClient, yeni bir client'ı Hub'a ekler ve güncel online listesini
// herkese yayınlar. Broadcast aynı lock altında yapılır — iki hızlı
// bağlantının snapshot'ları birbirinin üstüne sırasız yazamaz.
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	log.Printf("[ws] client connected: user=%s (connections for user: %d)",
		client.userID, len(h.clients[client.userID]))

	h.broadcastOnlineUsersLocked()
}

// removeClient, bir client'ı Hub'dan çıkarır, send channel'ını kapatır ve
// güncel online listesini yayınlar.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.clients, client.userID)
		log.Printf("[ws] user fully disconnected: %s", client.userID)
	} else {
		log.Printf("[ws] client disconnected: user=%s (remaining: %d)",
			client.userID, len(clients))
	}

	h.broadcastOnlineUsersLocked()
}

// broadcastOnlineUsersLocked, tüm bağlı client'lara online kullanıcı
// snapshot'ını gönderir. h.mu yazma kilidi tutulurken çağrılmalıdır.
func (h *Hub) broadcastOnlineUsersLocked() {
	event := Event{
		Op:   OpOnlineUsers,
		Data: h.onlineUserIDsLocked(),
		Seq:  h.seq.Add(1),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal online users event: %v", err)
		return
	}

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Buffer dolu — bu client yavaş, bağlantısını kopar.
				// unregister'a goroutine ile gönderilir, lock altında channel'a
				// yazmak Run loop'uyla deadlock yapardı.
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

// BroadcastToUser, belirli bir kullanıcının TÜM bağlantılarına event gönderir.
// Kullanıcı offline ise sessizce no-op'tur — mesaj DB'de durur, kullanıcı
// döndüğünde fetch ile alır.
func (h *Hub) BroadcastToUser(userID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal user event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[userID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

// IsOnline, kullanıcının en az bir aktif bağlantısı olup olmadığını döner.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// OnlineUserIDs, bağlı olan tüm kullanıcı ID'lerini sıralı döner.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineUserIDsLocked()
}

// onlineUserIDsLocked, ID listesini üretir. En az okuma kilidi gerektirir.
// Sıralama deterministik payload içindir — map iterasyonu rastgeledir.
func (h *Hub) onlineUserIDsLocked() []string {
	ids := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown, tüm client bağlantılarını kapatır (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	log.Println("[ws] hub shut down, all connections closed")
}
