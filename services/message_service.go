package services

import (
	"context"
	"fmt"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
	"github.com/Niladri080/Chat-App/repository"
	"github.com/Niladri080/Chat-App/ws"
)

// MessageService, direct message iş mantığı interface'i.
type MessageService interface {
	// Send, mesajı DB'ye yazar ve online taraflara WS ile iletir.
	// DB yazımı başarılıysa mesaj gönderilmiş sayılır — WS delivery
	// başarısızlığı hata DEĞİLDİR, alıcı fetch ile telafi eder.
	Send(ctx context.Context, senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error)

	// ListConversation, iki kullanıcı arasındaki tüm mesajları döner ve
	// karşı taraftan gelen okunmamışları seen olarak işaretler.
	ListConversation(ctx context.Context, userID, otherUserID string) ([]models.Message, error)

	// MarkSeen, tek bir mesajı seen olarak işaretler. Sadece alıcı çağırabilir.
	MarkSeen(ctx context.Context, messageID, userID string) error

	// SidebarUsers, diğer tüm kullanıcıları okunmamış mesaj sayılarıyla döner.
	// Sayılar her çağrıda DB'den yeniden hesaplanır — bellekte sayaç tutulmaz,
	// kaçırılmış WS event'i sayacı bozamaz.
	SidebarUsers(ctx context.Context, userID string) ([]models.SidebarUser, error)
}

// messageService, MessageService interface'inin implementasyonu.
type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	uploads     UploadService
	hub         ws.EventPublisher
}

// NewMessageService, constructor.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	uploads UploadService,
	hub ws.EventPublisher,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		uploads:     uploads,
		hub:         hub,
	}
}

// Send, yeni bir direct message oluşturur.
//
// Akış:
// 1. Validation + alıcı kontrolü
// 2. Görsel varsa diske kaydet
// 3. DB'ye yaz (kalıcılık burada garanti edilir)
// 4. Alıcının ve gönderenin tüm bağlantılarına newMessage event'i
//    (gönderenin diğer cihazları/tab'ları da mesajı anında görmeli)
func (s *messageService) Send(ctx context.Context, senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot send a message to yourself", pkg.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err // ErrNotFound
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	if req.Text != "" {
		msg.Text = &req.Text
	}
	if req.Image != "" {
		url, err := s.uploads.SaveDataURL(req.Image)
		if err != nil {
			return nil, err
		}
		msg.ImageURL = &url
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	event := ws.Event{Op: ws.OpNewMessage, Data: msg}
	s.hub.BroadcastToUser(receiverID, event)
	s.hub.BroadcastToUser(senderID, event)

	return msg, nil
}

func (s *messageService) ListConversation(ctx context.Context, userID, otherUserID string) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListBetweenMarkingSeen(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}

	// Boş konuşma da geçerlidir — nil yerine boş slice dönülür,
	// JSON'da null değil [] serialize edilir.
	if messages == nil {
		messages = []models.Message{}
	}

	return messages, nil
}

func (s *messageService) MarkSeen(ctx context.Context, messageID, userID string) error {
	// receiver_id = userID koşulu repo sorgusunda — başka kullanıcının
	// mesajını işaretleme denemesi ErrNotFound ile döner.
	return s.messageRepo.MarkSeen(ctx, messageID, userID)
}

func (s *messageService) SidebarUsers(ctx context.Context, userID string) ([]models.SidebarUser, error) {
	users, err := s.userRepo.ListOthers(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.messageRepo.CountUnseenBySender(ctx, userID)
	if err != nil {
		return nil, err
	}

	sidebar := make([]models.SidebarUser, 0, len(users))
	for _, user := range users {
		sidebar = append(sidebar, models.SidebarUser{
			User:        user,
			UnseenCount: counts[user.ID],
		})
	}

	return sidebar, nil
}
