package client

import (
	"sync"

	"github.com/Niladri080/Chat-App/models"
)

// UnseenCounters, gönderen bazında okunmamış mesaj sayaçlarını tutar.
// Sidebar fetch'i otoriter değerleri yükler; aktif konuşmaya ait olmayan
// her newMessage event'i ilgili göndereni artırır, konuşma açılınca
// gönderen sıfırlanır.
type UnseenCounters struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewUnseenCounters() *UnseenCounters {
	return &UnseenCounters{counts: make(map[string]int)}
}

// Load, sidebar yanıtındaki sayıları otoriter değer olarak yükler.
// Önceki artışlar atılır — server her zaman doğru sayıyı bilir.
func (u *UnseenCounters) Load(users []models.SidebarUser) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.counts = make(map[string]int, len(users))
	for _, user := range users {
		if user.UnseenCount > 0 {
			u.counts[user.ID] = user.UnseenCount
		}
	}
}

// Increment, aktif konuşma dışından gelen mesajın göndereni için sayacı artırır.
func (u *UnseenCounters) Increment(senderID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.counts[senderID]++
}

// Reset, konuşma açıldığında o peer'ın sayacını sıfırlar.
func (u *UnseenCounters) Reset(senderID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.counts, senderID)
}

// Get, gönderenin mevcut sayacını döner.
func (u *UnseenCounters) Get(senderID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts[senderID]
}

// Total, tüm gönderenlerin toplamını döner (uygulama badge'i için).
func (u *UnseenCounters) Total() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	total := 0
	for _, count := range u.counts {
		total += count
	}
	return total
}
