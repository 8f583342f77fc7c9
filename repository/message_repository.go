package repository

import (
	"context"

	"github.com/Niladri080/Chat-App/models"
)

// MessageRepository, direct message veritabanı işlemleri için interface.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)

	// ListBetweenMarkingSeen, iki kullanıcı arasındaki tüm mesajları kronolojik
	// sırayla döner ve AYNI transaction içinde karşı taraftan gelen okunmamış
	// mesajları seen olarak işaretler. Sohbet açıldığında çağrılır — listeleme
	// ile işaretleme arasında yeni mesaj kaçırmamak için atomiktir.
	ListBetweenMarkingSeen(ctx context.Context, userID, otherUserID string) ([]models.Message, error)

	// MarkSeen, tek bir mesajı seen olarak işaretler.
	// receiverID kontrolü ile başkasının mesajını işaretlemek engellenir.
	MarkSeen(ctx context.Context, messageID, receiverID string) error

	// CountUnseenBySender, verilen kullanıcının okunmamış mesajlarını
	// gönderen bazında gruplar (senderId → adet). Sidebar badge'leri için.
	CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int, error)
}
