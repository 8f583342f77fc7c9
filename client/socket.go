package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/ws"
)

// Socket heartbeat ve reconnect sabitleri.
const (
	heartbeatInterval  = 30 * time.Second
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// Socket, server'a kalıcı WebSocket bağlantısı kurar ve event'leri dağıtır.
//
// Bağlantı koptuğunda jitter'lı exponential backoff ile yeniden bağlanır.
// Her başarılı (yeniden) bağlanmada OnResync callback'i tetiklenir — uygulama
// kopukluk sırasında kaçırdığı mesajları fetch ile telafi etmelidir.
type Socket struct {
	serverURL string
	token     string

	mu       sync.RWMutex
	conn     *websocket.Conn
	lastSeq  int64
	closed   bool
	cancelFn context.CancelFunc

	nextHandlerID int
	onNewMessage  map[int]func(models.Message)
	onOnlineUsers map[int]func([]string)
	onResync      map[int]func()
}

// NewSocket, yeni bir Socket oluşturur. Bağlantı Connect ile açılır.
// serverURL: http(s) adres — ws(s) şemasına otomatik çevrilir.
func NewSocket(serverURL, token string) *Socket {
	return &Socket{
		serverURL:     serverURL,
		token:         token,
		onNewMessage:  make(map[int]func(models.Message)),
		onOnlineUsers: make(map[int]func([]string)),
		onResync:      make(map[int]func()),
	}
}

// OnNewMessage, yeni mesaj event'leri için handler kaydeder.
// Dönen fonksiyon SADECE bu handler'ın kaydını siler — konuşma görünümü
// kapanırken çağrılmalıdır. İkinci çağrılışı no-op'tur.
func (s *Socket) OnNewMessage(fn func(models.Message)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextHandlerID
	s.nextHandlerID++
	s.onNewMessage[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.onNewMessage, id)
	}
}

// OnOnlineUsers, online kullanıcı snapshot'ları için handler kaydeder.
// Dönen fonksiyon kaydı siler.
func (s *Socket) OnOnlineUsers(fn func([]string)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextHandlerID
	s.nextHandlerID++
	s.onOnlineUsers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.onOnlineUsers, id)
	}
}

// OnResync, olası event kaybında (reconnect veya seq atlaması) tetiklenecek
// handler kaydeder. Uygulama burada aktif konuşmayı yeniden fetch etmelidir.
// Dönen fonksiyon kaydı siler.
func (s *Socket) OnResync(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextHandlerID
	s.nextHandlerID++
	s.onResync[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.onResync, id)
	}
}

// Connect, bağlantıyı açar ve arka planda read/heartbeat loop'larını başlatır.
// İlk bağlantı başarısız olursa hata döner; sonraki kopuşlarda kendi kendine
// yeniden bağlanır.
func (s *Socket) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancelFn = cancel
	s.mu.Unlock()

	conn, err := s.dial(runCtx)
	if err != nil {
		cancel()
		return err
	}
	s.setConn(conn)

	go s.readLoop(runCtx, conn)
	go s.heartbeatLoop(runCtx)
	return nil
}

// Close, bağlantıyı kapatır ve reconnect denemelerini durdurur.
func (s *Socket) Close() {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	cancel := s.cancelFn
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
}

// ─── internals ───

func (s *Socket) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL := strings.Replace(s.serverURL, "http", "ws", 1)
	u := wsURL + "/ws?token=" + url.QueryEscape(s.token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial websocket: %w", err)
	}
	return conn, nil
}

func (s *Socket) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.lastSeq = 0 // seq server restart'ında sıfırlanabilir — bağlantı başına takip edilir
	s.mu.Unlock()
}

// readLoop, event'leri okur ve dispatch eder. Bağlantı kopunca reconnect başlatır.
func (s *Socket) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if ctx.Err() != nil || s.isClosed() {
				return
			}
			s.reconnect(ctx)
			return
		}

		var event ws.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("[client] invalid event payload: %v", err)
			continue
		}

		s.dispatch(event)
	}
}

func (s *Socket) dispatch(event ws.Event) {
	// Seq atlaması = aradaki event kayboldu. Geri kalan state fetch ile
	// düzeltilir — online listesi zaten her seferinde tam snapshot'tır.
	if event.Seq > 0 {
		s.mu.Lock()
		gap := s.lastSeq > 0 && event.Seq > s.lastSeq+1
		if event.Seq > s.lastSeq {
			s.lastSeq = event.Seq
		}
		s.mu.Unlock()
		if gap {
			s.emitResync()
		}
	}

	switch event.Op {
	case ws.OpNewMessage:
		data, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[client] invalid newMessage payload: %v", err)
			return
		}
		s.mu.RLock()
		handlers := make([]func(models.Message), 0, len(s.onNewMessage))
		for _, fn := range s.onNewMessage {
			handlers = append(handlers, fn)
		}
		s.mu.RUnlock()
		for _, fn := range handlers {
			fn(msg)
		}

	case ws.OpOnlineUsers:
		data, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		var userIDs []string
		if err := json.Unmarshal(data, &userIDs); err != nil {
			log.Printf("[client] invalid getOnlineUsers payload: %v", err)
			return
		}
		s.mu.RLock()
		handlers := make([]func([]string), 0, len(s.onOnlineUsers))
		for _, fn := range s.onOnlineUsers {
			handlers = append(handlers, fn)
		}
		s.mu.RUnlock()
		for _, fn := range handlers {
			fn(userIDs)
		}

	case ws.OpHeartbeatAck:
		// no-op — read deadline'ı server tarafı yönetir
	}
}

func (s *Socket) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()
			if conn == nil {
				continue
			}

			data, err := json.Marshal(ws.Event{Op: ws.OpHeartbeat})
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				// Yazma hatası — readLoop da kopuşu görecek ve reconnect edecek.
				continue
			}
		}
	}
}

// reconnect, jitter'lı exponential backoff ile yeniden bağlanır.
func (s *Socket) reconnect(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		jitter := time.Duration(rand.Float64() * float64(reconnectBaseDelay) * 0.5)
		delay := time.Duration(math.Min(
			float64(reconnectBaseDelay)*math.Pow(2, float64(attempt))+float64(jitter),
			float64(reconnectMaxDelay),
		))

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if s.isClosed() {
			return
		}

		conn, err := s.dial(ctx)
		if err != nil {
			log.Printf("[client] reconnect attempt %d failed: %v", attempt+1, err)
			continue
		}

		s.setConn(conn)
		go s.readLoop(ctx, conn)

		// Kopukluk sırasında kaçan mesajlar fetch ile telafi edilmeli.
		s.emitResync()
		return
	}
}

func (s *Socket) emitResync() {
	s.mu.RLock()
	handlers := make([]func(), 0, len(s.onResync))
	for _, fn := range s.onResync {
		handlers = append(handlers, fn)
	}
	s.mu.RUnlock()
	for _, fn := range handlers {
		fn()
	}
}

func (s *Socket) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
