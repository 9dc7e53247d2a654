package queries

import (
	"errors"
	"time"

	"splitship/internal/pkg/guard"
)

var ErrGetDeadLettersQueryIsNotConstructed = errors.New(
	"GetDeadLettersQuery must be created via NewGetDeadLettersQuery constructor",
)

// defaultDeadLetterLimit bounds the listing when no limit is given.
const defaultDeadLetterLimit = 100

// GetDeadLettersQuery lists events that exhausted their retry budget,
// newest first, for operator inspection.
type GetDeadLettersQuery struct {
	limit int

	guard guard.ConstructorGuard
}

// NewGetDeadLettersQuery creates the query. A non-positive limit falls back
// to the default.
func NewGetDeadLettersQuery(limit int) GetDeadLettersQuery {
	if limit <= 0 {
		limit = defaultDeadLetterLimit
	}

	return GetDeadLettersQuery{
		limit: limit,
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the query was created through the constructor.
func (q GetDeadLettersQuery) Validate() error {
	return q.guard.Validate(ErrGetDeadLettersQueryIsNotConstructed)
}

// Limit returns the maximum number of rows to list.
func (q GetDeadLettersQuery) Limit() int {
	return q.limit
}

// GetDeadLettersQueryResponse is the read model of one dead-lettered event.
type GetDeadLettersQueryResponse struct {
	EventID    string
	ShopDomain string
	Topic      string
	Attempts   int
	LastError  string
	FailedAt   time.Time
}
