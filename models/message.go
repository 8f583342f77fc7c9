package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Message maksimum metin uzunluğu (karakter cinsinden).
const MaxMessageTextLen = 4000

// Message, iki kullanıcı arasındaki tek bir direct message'ı temsil eder.
// Text ve ImageURL nullable'dır — en az biri dolu olmak zorundadır
// (validasyon SendMessageRequest.Validate'te).
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       *string   `json:"text,omitempty"`
	ImageURL   *string   `json:"image,omitempty"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SendMessageRequest, mesaj gönderirken frontend'den gelen veri.
// Image bir data URL'dir (data:image/png;base64,...) — upload service
// dosyaya çevirip kalıcı URL üretir.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// Validate, SendMessageRequest'in geçerli olup olmadığını kontrol eder.
// Text veya Image'dan en az biri dolu olmalıdır.
func (r *SendMessageRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" && r.Image == "" {
		return fmt.Errorf("message must contain text or an image")
	}
	if utf8.RuneCountInString(r.Text) > MaxMessageTextLen {
		return fmt.Errorf("message text must be at most %d characters", MaxMessageTextLen)
	}
	return nil
}
