package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Niladri080/Chat-App/database"
	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
	"github.com/Niladri080/Chat-App/pkg/crypto"
)

// sqliteMessageRepo, MessageRepository interface'inin SQLite implementasyonu.
// Diğer repo'lardan farklı olarak *sql.DB tutar — ListBetweenMarkingSeen
// kendi transaction'ını başlatmak zorundadır.
//
// encryptionKey verilmişse mesaj metinleri DB'ye AES-256-GCM ile şifreli
// yazılır ve okurken çözülür. Key nil ise plaintext saklanır.
type sqliteMessageRepo struct {
	conn          *sql.DB
	encryptionKey []byte
}

// NewSQLiteMessageRepo, MessageRepository constructor'ı.
func NewSQLiteMessageRepo(db *database.DB, encryptionKey []byte) MessageRepository {
	return &sqliteMessageRepo{conn: db.Conn, encryptionKey: encryptionKey}
}

func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	storedText, err := r.encryptText(msg.Text)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO messages (id, sender_id, receiver_id, text, image_url, seen)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?, ?, 0)
		RETURNING id, created_at`

	err = r.conn.QueryRowContext(ctx, query,
		msg.SenderID,
		msg.ReceiverID,
		storedText,
		msg.ImageURL,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *sqliteMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image_url, seen, created_at
		FROM messages WHERE id = ?`

	msg := &models.Message{}
	err := r.conn.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID,
		&msg.Text, &msg.ImageURL, &msg.Seen, &msg.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message by id: %w", err)
	}

	if msg.Text, err = r.decryptText(msg.Text); err != nil {
		return nil, err
	}

	return msg, nil
}

func (r *sqliteMessageRepo) ListBetweenMarkingSeen(ctx context.Context, userID, otherUserID string) ([]models.Message, error) {
	var messages []models.Message

	// Listeleme ve seen işaretleme tek transaction'da yapılır — arada gelen
	// yeni mesajın yanlışlıkla seen işaretlenmesi veya atlanması engellenir.
	err := database.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		var err error
		messages, err = r.listBetween(ctx, tx, userID, otherUserID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE messages SET seen = 1 WHERE sender_id = ? AND receiver_id = ? AND seen = 0`,
			otherUserID, userID,
		); err != nil {
			return fmt.Errorf("failed to mark messages seen: %w", err)
		}

		// Dönen listede de seen güncellenmeli — client DB'deki son durumu görmeli.
		for i := range messages {
			if messages[i].SenderID == otherUserID && messages[i].ReceiverID == userID {
				messages[i].Seen = true
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *sqliteMessageRepo) MarkSeen(ctx context.Context, messageID, receiverID string) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE messages SET seen = 1 WHERE id = ? AND receiver_id = ?`,
		messageID, receiverID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message seen: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check mark seen result: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteMessageRepo) CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int, error) {
	query := `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = ? AND seen = 0
		GROUP BY sender_id`

	rows, err := r.conn.QueryContext(ctx, query, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unseen messages: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var senderID string
		var count int
		if err := rows.Scan(&senderID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unseen count row: %w", err)
		}
		counts[senderID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unseen count rows: %w", err)
	}

	return counts, nil
}

// listBetween, iki kullanıcı arasındaki tüm mesajları kronolojik sırayla okur.
// created_at saniye çözünürlüğündedir — eşitlikte id ile deterministik sıralanır.
func (r *sqliteMessageRepo) listBetween(ctx context.Context, q database.TxQuerier, userID, otherUserID string) ([]models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image_url, seen, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at, id`

	rows, err := q.QueryContext(ctx, query, userID, otherUserID, otherUserID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.ReceiverID,
			&msg.Text, &msg.ImageURL, &msg.Seen, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if msg.Text, err = r.decryptText(msg.Text); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}

	return messages, nil
}

// encryptText, key ayarlıysa metni şifreler; nil text olduğu gibi geçer.
func (r *sqliteMessageRepo) encryptText(text *string) (*string, error) {
	if r.encryptionKey == nil || text == nil {
		return text, nil
	}
	encrypted, err := crypto.Encrypt(*text, r.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt message text: %w", err)
	}
	return &encrypted, nil
}

func (r *sqliteMessageRepo) decryptText(text *string) (*string, error) {
	if r.encryptionKey == nil || text == nil {
		return text, nil
	}
	decrypted, err := crypto.Decrypt(*text, r.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt message text: %w", err)
	}
	return &decrypted, nil
}
