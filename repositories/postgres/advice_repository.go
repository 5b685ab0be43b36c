package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/Product-Advisor/models"
	"github.com/YogindraChaudhari/Product-Advisor/repositories"
)

// AdviceRepository implements repositories.AdviceRepository
type AdviceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAdviceRepository creates a new advice repository
func NewAdviceRepository(db *DB, logger *zap.Logger) repositories.AdviceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdviceRepository{db: db, logger: logger}
}

const adviceColumns = `id, input_prompt, result, user_id, title, provider, created_at`

// Create inserts a new advice
func (r *AdviceRepository) Create(ctx context.Context, advice *models.Advice) error {
	query := `
		INSERT INTO advices (` + adviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		advice.ID,
		advice.InputPrompt,
		advice.Result,
		advice.UserID,
		advice.Title,
		advice.Provider,
		advice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create advice: %w", err)
	}

	r.logger.Debug("advice created",
		zap.String("id", advice.ID.String()),
		zap.String("provider", advice.Provider))
	return nil
}

// ListByOwner returns the owner's advices, newest first
func (r *AdviceRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Advice, error) {
	query := `
		SELECT ` + adviceColumns + `
		FROM advices
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list advices: %w", err)
	}
	defer rows.Close()

	advices := make([]*models.Advice, 0)
	for rows.Next() {
		advice := &models.Advice{}
		if err := rows.Scan(
			&advice.ID,
			&advice.InputPrompt,
			&advice.Result,
			&advice.UserID,
			&advice.Title,
			&advice.Provider,
			&advice.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan advice: %w", err)
		}
		advices = append(advices, advice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate advices: %w", err)
	}

	return advices, nil
}

// DeleteByIDAndOwner deletes one advice owned by userID
func (r *AdviceRepository) DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, userID string) error {
	query := `DELETE FROM advices WHERE id = $1 AND user_id = $2`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete advice: %w", err)
	}

	if err := requireAffected(result, id); err != nil {
		return err
	}

	r.logger.Debug("advice deleted", zap.String("id", id.String()))
	return nil
}

// UpdateTitle renames one advice owned by userID
func (r *AdviceRepository) UpdateTitle(ctx context.Context, id uuid.UUID, userID, title string) error {
	query := `UPDATE advices SET title = $3 WHERE id = $1 AND user_id = $2`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, userID, title)
	if err != nil {
		return fmt.Errorf("failed to update advice title: %w", err)
	}

	if err := requireAffected(result, id); err != nil {
		return err
	}

	r.logger.Debug("advice title updated", zap.String("id", id.String()))
	return nil
}

// DeleteAllByOwner removes every advice owned by userID
func (r *AdviceRepository) DeleteAllByOwner(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM advices WHERE user_id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete advices: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Debug("owner advices deleted", zap.Int64("count", deleted))
	return deleted, nil
}

func requireAffected(result sql.Result, id uuid.UUID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("advice %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}
