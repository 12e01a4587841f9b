package usecase

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
)

var validate = validator.New()

// AuditSink receives activity entries. Implementations must not fail the caller.
type AuditSink interface {
	Log(ctx context.Context, msg string, severity domain.Severity, businessID uuid.UUID)
}

// ItemSource resolves catalog items by id with their variant tree.
type ItemSource interface {
	Lookup(ctx context.Context, ids []uuid.UUID) ([]domain.Item, error)
}

func logActivity(ctx context.Context, sink AuditSink, msg string, businessID uuid.UUID) {
	if sink == nil {
		return
	}
	sink.Log(ctx, msg, domain.SeverityActivity, businessID)
}

// notFound maps a repository miss to the named condition and passes anything else through.
func notFound(err error, named *domain.Error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return named
	}
	return err
}

func itemsByID(items []domain.Item) map[uuid.UUID]*domain.Item {
	out := make(map[uuid.UUID]*domain.Item, len(items))
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out
}
