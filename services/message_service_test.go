package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
	"github.com/Niladri080/Chat-App/ws"
)

// --- in-memory mock'lar ---

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already registered", pkg.ErrAlreadyExists)
		}
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
}

func (m *mockUserRepo) ListOthers(ctx context.Context, excludeUserID string) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.ID != excludeUserID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, newPasswordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return pkg.ErrNotFound
	}
	u.Password = newPasswordHash
	return nil
}

type mockMessageRepo struct {
	messages  []*models.Message
	createErr error
	nextID    int
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	msg.ID = fmt.Sprintf("msg-%d", m.nextID)
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, fmt.Errorf("%w: message not found", pkg.ErrNotFound)
}

func (m *mockMessageRepo) ListBetweenMarkingSeen(ctx context.Context, userID, otherUserID string) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userID && msg.ReceiverID == otherUserID) ||
			(msg.SenderID == otherUserID && msg.ReceiverID == userID) {
			if msg.SenderID == otherUserID {
				msg.Seen = true
			}
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) MarkSeen(ctx context.Context, messageID, receiverID string) error {
	for _, msg := range m.messages {
		if msg.ID == messageID && msg.ReceiverID == receiverID {
			msg.Seen = true
			return nil
		}
	}
	return fmt.Errorf("%w: message not found", pkg.ErrNotFound)
}

func (m *mockMessageRepo) CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, msg := range m.messages {
		if msg.ReceiverID == receiverID && !msg.Seen {
			counts[msg.SenderID]++
		}
	}
	return counts, nil
}

// mockPublisher, yayınlanan event'leri kaydeder.
type mockPublisher struct {
	events map[string][]ws.Event // userID → event'ler
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{events: make(map[string][]ws.Event)}
}

func (m *mockPublisher) BroadcastToUser(userID string, event ws.Event) {
	m.events[userID] = append(m.events[userID], event)
}

func (m *mockPublisher) IsOnline(userID string) bool { return len(m.events[userID]) > 0 }
func (m *mockPublisher) OnlineUserIDs() []string     { return nil }

type mockUploads struct {
	savedURL string
	err      error
	calls    int
}

func (m *mockUploads) SaveDataURL(dataURL string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.savedURL, nil
}

func newTestMessageService(msgRepo *mockMessageRepo, userRepo *mockUserRepo, pub *mockPublisher) MessageService {
	return NewMessageService(msgRepo, userRepo, &mockUploads{savedURL: "/api/uploads/x.png"}, pub)
}

// --- testler ---

func TestMessageService_Send_DeliversToBothParties(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newMockUserRepo(
		&models.User{ID: "alice", Email: "alice@test.com"},
		&models.User{ID: "bob", Email: "bob@test.com"},
	)
	msgRepo := &mockMessageRepo{}
	pub := newMockPublisher()
	svc := newTestMessageService(msgRepo, userRepo, pub)

	// When: Alice Bob'a mesaj gönderir
	msg, err := svc.Send(ctx, "alice", "bob", &models.SendMessageRequest{Text: "merhaba"})

	// Then: mesaj DB'ye yazılır ve her iki tarafa da event gider
	req.NoError(err)
	req.NotEmpty(msg.ID)
	req.Equal("alice", msg.SenderID)
	req.Equal("bob", msg.ReceiverID)
	req.NotNil(msg.Text)
	req.Equal("merhaba", *msg.Text)
	req.Len(msgRepo.messages, 1)

	req.Len(pub.events["bob"], 1)
	req.Len(pub.events["alice"], 1)
	req.Equal(ws.OpNewMessage, pub.events["bob"][0].Op)
}

func TestMessageService_Send_RejectsSelfSend(t *testing.T) {
	req := require.New(t)

	userRepo := newMockUserRepo(&models.User{ID: "alice"})
	svc := newTestMessageService(&mockMessageRepo{}, userRepo, newMockPublisher())

	_, err := svc.Send(context.Background(), "alice", "alice", &models.SendMessageRequest{Text: "hi"})

	req.ErrorIs(err, pkg.ErrBadRequest)
}

func TestMessageService_Send_RejectsUnknownReceiver(t *testing.T) {
	req := require.New(t)

	userRepo := newMockUserRepo(&models.User{ID: "alice"})
	pub := newMockPublisher()
	svc := newTestMessageService(&mockMessageRepo{}, userRepo, pub)

	_, err := svc.Send(context.Background(), "alice", "ghost", &models.SendMessageRequest{Text: "hi"})

	req.ErrorIs(err, pkg.ErrNotFound)
	req.Empty(pub.events)
}

func TestMessageService_Send_RejectsEmptyMessage(t *testing.T) {
	req := require.New(t)

	userRepo := newMockUserRepo(
		&models.User{ID: "alice"},
		&models.User{ID: "bob"},
	)
	svc := newTestMessageService(&mockMessageRepo{}, userRepo, newMockPublisher())

	_, err := svc.Send(context.Background(), "alice", "bob", &models.SendMessageRequest{})

	req.ErrorIs(err, pkg.ErrBadRequest)
}

func TestMessageService_Send_DBFailureDoesNotBroadcast(t *testing.T) {
	req := require.New(t)

	userRepo := newMockUserRepo(
		&models.User{ID: "alice"},
		&models.User{ID: "bob"},
	)
	msgRepo := &mockMessageRepo{createErr: errors.New("disk full")}
	pub := newMockPublisher()
	svc := newTestMessageService(msgRepo, userRepo, pub)

	_, err := svc.Send(context.Background(), "alice", "bob", &models.SendMessageRequest{Text: "hi"})

	req.Error(err)
	req.Empty(pub.events, "failed persist must not emit events")
}

func TestMessageService_Send_WithImage(t *testing.T) {
	req := require.New(t)

	userRepo := newMockUserRepo(
		&models.User{ID: "alice"},
		&models.User{ID: "bob"},
	)
	uploads := &mockUploads{savedURL: "/api/uploads/abc.png"}
	svc := NewMessageService(&mockMessageRepo{}, userRepo, uploads, newMockPublisher())

	msg, err := svc.Send(context.Background(), "alice", "bob",
		&models.SendMessageRequest{Image: "data:image/png;base64,iVBOR"})

	req.NoError(err)
	req.Equal(1, uploads.calls)
	req.NotNil(msg.ImageURL)
	req.Equal("/api/uploads/abc.png", *msg.ImageURL)
	req.Nil(msg.Text)
}

func TestMessageService_ListConversation_MarksIncomingSeen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newMockUserRepo(
		&models.User{ID: "alice"},
		&models.User{ID: "bob"},
	)
	msgRepo := &mockMessageRepo{}
	pub := newMockPublisher()
	svc := newTestMessageService(msgRepo, userRepo, pub)

	_, err := svc.Send(ctx, "bob", "alice", &models.SendMessageRequest{Text: "selam"})
	req.NoError(err)

	// When: Alice konuşmayı açar
	messages, err := svc.ListConversation(ctx, "alice", "bob")

	// Then: Bob'dan gelen mesaj seen olur
	req.NoError(err)
	req.Len(messages, 1)
	req.True(messages[0].Seen)
	req.True(msgRepo.messages[0].Seen)
}

func TestMessageService_ListConversation_EmptyIsSliceNotNil(t *testing.T) {
	req := require.New(t)

	userRepo := newMockUserRepo(
		&models.User{ID: "alice"},
		&models.User{ID: "bob"},
	)
	svc := newTestMessageService(&mockMessageRepo{}, userRepo, newMockPublisher())

	messages, err := svc.ListConversation(context.Background(), "alice", "bob")

	req.NoError(err)
	req.NotNil(messages)
	req.Empty(messages)
}

func TestMessageService_MarkSeen_OnlyReceiverCanMark(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newMockUserRepo(
		&models.User{ID: "alice"},
		&models.User{ID: "bob"},
	)
	msgRepo := &mockMessageRepo{}
	svc := newTestMessageService(msgRepo, userRepo, newMockPublisher())

	msg, err := svc.Send(ctx, "alice", "bob", &models.SendMessageRequest{Text: "hi"})
	req.NoError(err)

	// Gönderen kendi mesajını seen işaretleyemez
	req.ErrorIs(svc.MarkSeen(ctx, msg.ID, "alice"), pkg.ErrNotFound)

	// Alıcı işaretleyebilir
	req.NoError(svc.MarkSeen(ctx, msg.ID, "bob"))
	req.True(msgRepo.messages[0].Seen)
}

func TestMessageService_SidebarUsers_UnseenCounts(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	userRepo := newMockUserRepo(
		&models.User{ID: "alice", FullName: "Alice"},
		&models.User{ID: "bob", FullName: "Bob"},
		&models.User{ID: "carol", FullName: "Carol"},
	)
	msgRepo := &mockMessageRepo{}
	svc := newTestMessageService(msgRepo, userRepo, newMockPublisher())

	// Bob 2, Carol 1 okunmamış mesaj gönderir
	for _, text := range []string{"bir", "iki"} {
		_, err := svc.Send(ctx, "bob", "alice", &models.SendMessageRequest{Text: text})
		req.NoError(err)
	}
	_, err := svc.Send(ctx, "carol", "alice", &models.SendMessageRequest{Text: "üç"})
	req.NoError(err)

	sidebar, err := svc.SidebarUsers(ctx, "alice")
	req.NoError(err)
	req.Len(sidebar, 2, "alice kendisi listede olmamalı")

	counts := make(map[string]int)
	for _, u := range sidebar {
		counts[u.ID] = u.UnseenCount
	}
	req.Equal(2, counts["bob"])
	req.Equal(1, counts["carol"])

	// Konuşma açıldıktan sonra sayaç sıfırlanır
	_, err = svc.ListConversation(ctx, "alice", "bob")
	req.NoError(err)

	sidebar, err = svc.SidebarUsers(ctx, "alice")
	req.NoError(err)
	for _, u := range sidebar {
		if u.ID == "bob" {
			req.Zero(u.UnseenCount)
		}
	}
}
