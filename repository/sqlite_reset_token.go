package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Niladri080/Chat-App/database"
	"github.com/Niladri080/Chat-App/models"
	"github.com/Niladri080/Chat-App/pkg"
)

// sqliteResetTokenRepo, ResetTokenRepository interface'inin SQLite implementasyonu.
type sqliteResetTokenRepo struct {
	db database.TxQuerier
}

// NewSQLiteResetTokenRepo, ResetTokenRepository constructor'ı.
func NewSQLiteResetTokenRepo(db database.TxQuerier) ResetTokenRepository {
	return &sqliteResetTokenRepo{db: db}
}

func (r *sqliteResetTokenRepo) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	return nil
}

func (r *sqliteResetTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used, created_at
		FROM password_reset_tokens WHERE token_hash = ?`

	token := &models.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash,
		&token.ExpiresAt, &token.Used, &token.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return token, nil
}

func (r *sqliteResetTokenRepo) MarkUsed(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE id = ? AND used = 0`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check mark used result: %w", err)
	}
	if affected == 0 {
		// Token yok veya zaten kullanılmış — ikisi de geçersiz sayılır.
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteResetTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at < CURRENT_TIMESTAMP OR used = 1`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted reset tokens: %w", err)
	}

	return affected, nil
}
