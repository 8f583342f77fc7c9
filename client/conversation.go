package client

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Niladri080/Chat-App/models"
)

// EntryState, bir konuşma girdisinin yerel durumu.
type EntryState string

const (
	// EntryPending: optimistic yerel echo — server henüz onaylamadı.
	EntryPending EntryState = "pending"
	// EntrySent: server'dan ID'li hali geldi (HTTP ack veya WS event).
	EntrySent EntryState = "sent"
)

// Entry, konuşma görünümündeki tek bir satır.
// Pending girdilerde Message.ID boştur, TempID doludur.
type Entry struct {
	Message models.Message
	State   EntryState
	TempID  string
}

// Conversation, iki kullanıcı arasındaki konuşmanın client tarafı görünümüdür.
//
// Üç kaynaktan beslenir ve hepsini tek tutarlı listede birleştirir:
//  1. Fetch sonucu (Load) — otoriter geçmiş
//  2. WS newMessage event'leri (ApplyRemote)
//  3. Optimistic yerel echo'lar (AppendLocal → Ack/Fail)
//
// Aynı mesaj hem HTTP ack hem WS event olarak gelebilir (gönderen kendi
// broadcast'ini de alır) — server ID'si üzerinden dedupe edilir.
type Conversation struct {
	selfID string
	peerID string

	mu      sync.Mutex
	entries []Entry
	// seen server ID'leri — dedupe için
	known map[string]bool
}

// NewConversation, self ile peer arasındaki konuşma görünümünü oluşturur.
func NewConversation(selfID, peerID string) *Conversation {
	return &Conversation{
		selfID: selfID,
		peerID: peerID,
		known:  make(map[string]bool),
	}
}

// Load, fetch sonucunu görünümün otoriter geçmişi olarak yükler.
// Önceki server kaynaklı girdiler atılır; henüz sonuçlanmamış pending
// yerel girdiler listenin sonunda korunur (Ack veya Fail ile çözülecekler).
func (c *Conversation) Load(messages []models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var locals []Entry
	for _, e := range c.entries {
		if e.State == EntryPending {
			locals = append(locals, e)
		}
	}

	c.entries = make([]Entry, 0, len(messages)+len(locals))
	c.known = make(map[string]bool, len(messages))
	for _, msg := range messages {
		c.entries = append(c.entries, Entry{Message: msg, State: EntrySent})
		c.known[msg.ID] = true
	}
	c.entries = append(c.entries, locals...)
}

// AppendLocal, gönderilmek üzere olan mesajı optimistic olarak ekler ve
// temp ID döner. HTTP yanıtı gelince Ack veya Fail çağrılmalıdır.
func (c *Conversation) AppendLocal(req *models.SendMessageRequest) string {
	tempID := uuid.NewString()

	msg := models.Message{
		SenderID:   c.selfID,
		ReceiverID: c.peerID,
		CreatedAt:  time.Now(),
	}
	if req.Text != "" {
		text := req.Text
		msg.Text = &text
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Message: msg, State: EntryPending, TempID: tempID})
	return tempID
}

// Ack, pending girdiyi server'ın döndüğü mesajla değiştirir.
// Mesaj WS event olarak daha önce gelmişse pending girdi sadece silinir —
// aynı mesaj listede iki kez görünmez.
func (c *Conversation) Ack(tempID string, serverMsg *models.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOfTempLocked(tempID)
	if idx < 0 {
		return
	}

	if c.known[serverMsg.ID] {
		c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
		return
	}

	c.entries[idx] = Entry{Message: *serverMsg, State: EntrySent}
	c.known[serverMsg.ID] = true
}

// Fail, gönderimi başarısız olan pending girdiyi listeden tamamen çıkarır —
// onaylanmamış mesaj sırada görünmeye devam edemez. Çıkarılan mesaj döner,
// UI kullanıcıya bildirip retry için içeriği yeniden kullanabilir.
func (c *Conversation) Fail(tempID string) (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOfTempLocked(tempID)
	if idx < 0 {
		return models.Message{}, false
	}

	removed := c.entries[idx].Message
	c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	return removed, true
}

// ApplyRemote, WS'ten gelen newMessage event'ini görünüme işler.
// Bu konuşmaya ait olmayan veya zaten bilinen mesajlar yoksayılır;
// işlenen mesaj için true döner.
func (c *Conversation) ApplyRemote(msg models.Message) bool {
	if !c.belongsTo(msg) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.known[msg.ID] {
		return false
	}

	c.entries = append(c.entries, Entry{Message: msg, State: EntrySent})
	c.known[msg.ID] = true
	return true
}

// Entries, görünümün mevcut snapshot'ını döner. Dönen slice kopyadır —
// çağıran taraf güvenle iterate edebilir.
func (c *Conversation) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// UnseenCount, peer'dan gelip henüz seen işaretlenmemiş mesaj sayısını döner.
func (c *Conversation) UnseenCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, e := range c.entries {
		if e.Message.SenderID == c.peerID && !e.Message.Seen {
			count++
		}
	}
	return count
}

func (c *Conversation) belongsTo(msg models.Message) bool {
	return (msg.SenderID == c.peerID && msg.ReceiverID == c.selfID) ||
		(msg.SenderID == c.selfID && msg.ReceiverID == c.peerID)
}

func (c *Conversation) indexOfTempLocked(tempID string) int {
	for i, e := range c.entries {
		if e.TempID == tempID {
			return i
		}
	}
	return -1
}

// OnlineSet, server'dan gelen online kullanıcı snapshot'larını tutar.
// Socket.OnOnlineUsers handler'ında Update ile beslenir.
type OnlineSet struct {
	mu  sync.RWMutex
	ids map[string]bool
}

// NewOnlineSet, boş bir OnlineSet oluşturur.
func NewOnlineSet() *OnlineSet {
	return &OnlineSet{ids: make(map[string]bool)}
}

// Update, seti gelen snapshot ile tamamen değiştirir.
// Snapshot delta değildir — kaçırılan event'ler bir sonraki snapshot'ta düzelir.
func (o *OnlineSet) Update(userIDs []string) {
	next := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		next[id] = true
	}

	o.mu.Lock()
	o.ids = next
	o.mu.Unlock()
}

// IsOnline, kullanıcının son snapshot'ta online olup olmadığını döner.
func (o *OnlineSet) IsOnline(userID string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ids[userID]
}
