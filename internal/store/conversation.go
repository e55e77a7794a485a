// internal/store/conversation.go
package store

import (
	"context"
	"database/sql"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/models"
)

// ConversationStore is the append-only turn log.
type ConversationStore struct {
	db *sql.DB
}

func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Append persists one turn and returns it with its assigned id and timestamp.
func (s *ConversationStore) Append(ctx context.Context, userID string, role models.Role, content string) (*models.ConversationTurn, error) {
	turn := &models.ConversationTurn{
		UserID:  userID,
		Role:    role,
		Content: content,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (user_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		userID, string(role), content,
	).Scan(&turn.ID, &turn.CreatedAt)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("append_message", err)
	}
	return turn, nil
}

// Recent returns up to limit turns for the user, most recent first.
func (s *ConversationStore) Recent(ctx context.Context, userID string, limit int) ([]models.ConversationTurn, error) {
	if limit <= 0 {
		return []models.ConversationTurn{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, role, content, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("recent_messages", err)
	}
	defer rows.Close()

	turns := make([]models.ConversationTurn, 0, limit)
	for rows.Next() {
		var t models.ConversationTurn
		var role string
		if err := rows.Scan(&t.ID, &t.UserID, &role, &t.Content, &t.CreatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("recent_messages", err)
		}
		t.Role = models.Role(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("recent_messages", err)
	}
	return turns, nil
}

// History returns every turn for the user in creation order.
func (s *ConversationStore) History(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("message_history", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		var role string
		if err := rows.Scan(&role, &e.Content, &e.CreatedAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("message_history", err)
		}
		e.Role = models.Role(role)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("message_history", err)
	}
	return entries, nil
}
