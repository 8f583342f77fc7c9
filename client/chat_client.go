package client

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/Niladri080/Chat-App/models"
)

// ErrNoActiveConversation, Open çağrılmadan Send denendiğinde döner.
var ErrNoActiveConversation = errors.New("no active conversation, call Open first")

// ConversationAPI, ChatClient'ın ihtiyaç duyduğu HTTP çağrıları.
// *API implement eder; testlerde mock kullanılır.
type ConversationAPI interface {
	GetConversation(ctx context.Context, otherUserID string) ([]models.Message, error)
	SendMessage(ctx context.Context, receiverID string, req *models.SendMessageRequest) (*models.Message, error)
	MarkSeen(ctx context.Context, messageID string) error
	SidebarUsers(ctx context.Context) ([]models.SidebarUser, error)
}

// MessageStream, ChatClient'ın abone olduğu push event kaynağı.
// *Socket implement eder. Dönen fonksiyonlar aboneliği iptal eder.
type MessageStream interface {
	OnNewMessage(fn func(models.Message)) (unsubscribe func())
	OnResync(fn func()) (unsubscribe func())
}

// ChatClient, kullanıcının oturumunu yöneten koordinatördür: aktif konuşma
// görünümünü, gönderen bazlı okunmamış sayaçlarını ve push event routing'ini
// tek yerde birleştirir.
//
// Gelen her mesaj için karar burada verilir:
//   - aktif konuşmanın peer'ından geliyorsa → listeye ekle + server'da seen işaretle
//   - başka bir gönderendense → o gönderenin okunmamış sayacını artır
//
// Server hangi konuşmanın açık olduğunu bilmez — bu routing client'ındır.
type ChatClient struct {
	selfID   string
	api      ConversationAPI
	stream   MessageStream
	counters *UnseenCounters

	mu          sync.Mutex
	active      *Conversation
	unsubscribe []func()
}

// NewChatClient, koordinatörü oluşturur ve stream'e abone olur.
// Abonelik oturum boyunca yaşar; Shutdown ile bırakılır.
func NewChatClient(selfID string, api ConversationAPI, stream MessageStream) *ChatClient {
	c := &ChatClient{
		selfID:   selfID,
		api:      api,
		stream:   stream,
		counters: NewUnseenCounters(),
	}

	c.unsubscribe = append(c.unsubscribe,
		stream.OnNewMessage(c.handleIncoming),
		stream.OnResync(c.handleResync),
	)

	return c
}

// Open, peer ile konuşmayı açar: okunmamış sayacı sıfırlanır, tam geçmiş
// fetch edilir (server bu fetch'te gelen mesajları seen işaretler) ve yeni
// Conversation görünümü aktif yapılır. Önceki aktif konuşma kapanır.
func (c *ChatClient) Open(ctx context.Context, peerID string) (*Conversation, error) {
	messages, err := c.api.GetConversation(ctx, peerID)
	if err != nil {
		return nil, err
	}

	conv := NewConversation(c.selfID, peerID)
	conv.Load(messages)

	c.counters.Reset(peerID)

	c.mu.Lock()
	c.active = conv
	c.mu.Unlock()

	return conv, nil
}

// Close, aktif konuşma görünümünü kapatır. Sonraki inbound mesajlar artık
// listeye eklenmez, okunmamış sayacına gider. Server state'i değişmez.
func (c *ChatClient) Close() {
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}

// Shutdown, stream aboneliklerini bırakır ve aktif konuşmayı kapatır.
func (c *ChatClient) Shutdown() {
	c.Close()
	for _, unsub := range c.unsubscribe {
		unsub()
	}
}

// Send, aktif konuşmaya optimistic mesaj gönderir.
// Yerel echo anında listeye girer; HTTP yanıtı gelince server kaydıyla
// değiştirilir, hata olursa listeden çıkarılır ve hata döner.
func (c *ChatClient) Send(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error) {
	c.mu.Lock()
	conv := c.active
	c.mu.Unlock()
	if conv == nil {
		return nil, ErrNoActiveConversation
	}

	tempID := conv.AppendLocal(req)

	msg, err := c.api.SendMessage(ctx, conv.peerID, req)
	if err != nil {
		conv.Fail(tempID)
		return nil, err
	}

	conv.Ack(tempID, msg)
	return msg, nil
}

// RefreshSidebar, sohbet listesini fetch eder ve okunmamış sayaçlarını
// server'ın bildiği otoriter değerlerle değiştirir.
func (c *ChatClient) RefreshSidebar(ctx context.Context) ([]models.SidebarUser, error) {
	users, err := c.api.SidebarUsers(ctx)
	if err != nil {
		return nil, err
	}
	c.counters.Load(users)
	return users, nil
}

// Unseen, gönderenin okunmamış mesaj sayısını döner.
func (c *ChatClient) Unseen(senderID string) int {
	return c.counters.Get(senderID)
}

// Active, aktif konuşma görünümünü döner (yoksa nil).
func (c *ChatClient) Active() *Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// handleIncoming, push ile gelen newMessage event'ini yönlendirir.
// Socket'in read goroutine'inde çalışır.
func (c *ChatClient) handleIncoming(msg models.Message) {
	c.mu.Lock()
	conv := c.active
	c.mu.Unlock()

	// Aktif konuşmaya ait mesaj (peer'dan gelen veya kendi diğer
	// cihazımızın echo'su) listeye eklenir. Duplicate'ler ApplyRemote'ta
	// ID üzerinden elenir — seen de ikinci kez işaretlenmez.
	if conv != nil && c.belongsToActive(conv, msg) {
		applied := conv.ApplyRemote(msg)
		if applied && msg.ReceiverID == c.selfID {
			if err := c.api.MarkSeen(context.Background(), msg.ID); err != nil {
				// Fetch zaten seen işaretler — sonraki açılışta düzelir.
				log.Printf("[client] failed to mark message seen: %v", err)
			}
		}
		return
	}

	// Görünmeyen konuşmadan gelen mesaj: okunmamış sayacı artar, mesajın
	// kendisi konuşma açılana kadar fetch edilmez.
	if msg.ReceiverID == c.selfID {
		c.counters.Increment(msg.SenderID)
	}
}

// handleResync, reconnect veya seq atlaması sonrası state'i fetch ile tazeler.
func (c *ChatClient) handleResync() {
	ctx := context.Background()

	c.mu.Lock()
	conv := c.active
	c.mu.Unlock()

	if conv != nil {
		messages, err := c.api.GetConversation(ctx, conv.peerID)
		if err != nil {
			log.Printf("[client] resync fetch failed: %v", err)
		} else {
			conv.Load(messages)
		}
	}

	if _, err := c.RefreshSidebar(ctx); err != nil {
		log.Printf("[client] resync sidebar refresh failed: %v", err)
	}
}

func (c *ChatClient) belongsToActive(conv *Conversation, msg models.Message) bool {
	return (msg.SenderID == conv.peerID && msg.ReceiverID == c.selfID) ||
		(msg.SenderID == c.selfID && msg.ReceiverID == conv.peerID)
}
