package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetDeadLettersQueryHandler lists dead-lettered events from the database.
type GetDeadLettersQueryHandler struct {
	db *gorm.DB
}

// NewGetDeadLettersQueryHandler creates a handler for dead letter listings.
func NewGetDeadLettersQueryHandler(db *gorm.DB) GetDeadLettersQueryHandler {
	return GetDeadLettersQueryHandler{db: db}
}

// Handle executes the query, returning the newest dead letters first.
func (h GetDeadLettersQueryHandler) Handle(
	ctx context.Context,
	query GetDeadLettersQuery,
) ([]GetDeadLettersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	deadLetters := make([]GetDeadLettersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			event_id,
			shop_domain,
			topic,
			attempts,
			last_error,
			failed_at
		FROM dead_letters
		ORDER BY failed_at DESC
		LIMIT ?
	`, query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var deadLetter GetDeadLettersQueryResponse
		err = rows.Scan(
			&deadLetter.EventID,
			&deadLetter.ShopDomain,
			&deadLetter.Topic,
			&deadLetter.Attempts,
			&deadLetter.LastError,
			&deadLetter.FailedAt,
		)
		if err != nil {
			return nil, err
		}
		deadLetter.FailedAt = deadLetter.FailedAt.UTC()
		deadLetters = append(deadLetters, deadLetter)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deadLetters, nil
}
