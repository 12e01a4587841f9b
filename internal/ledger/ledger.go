package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/phenrril/stockroom/internal/domain"
	"github.com/phenrril/stockroom/internal/lock"
)

// AfterFunc runs inside a location's unit of work once the new snapshot is
// staged. Returning an error discards the snapshot.
type AfterFunc func(ctx context.Context, tx domain.InventoryTx) error

// Ledger owns every read-modify-write of location stock. Writes to one location
// are serialized by the locker and committed in a single storage transaction.
type Ledger struct {
	repo  domain.InventoryRepo
	locks lock.Locker
}

func New(repo domain.InventoryRepo, locks lock.Locker) *Ledger {
	if locks == nil {
		locks = lock.NewLocal()
	}
	return &Ledger{repo: repo, locks: locks}
}

func lockKey(locationID uuid.UUID) string { return "location:" + locationID.String() }

// Get returns the current snapshot of a location.
func (l *Ledger) Get(ctx context.Context, locationID uuid.UUID) ([]domain.InventoryLine, error) {
	return l.repo.List(ctx, locationID)
}

// SetAll replaces the location's snapshot. Duplicate keys are merged.
func (l *Ledger) SetAll(ctx context.Context, locationID uuid.UUID, lines []domain.InventoryLine) error {
	return l.Update(ctx, locationID, func(ctx context.Context, tx domain.InventoryTx) error {
		return tx.Replace(ctx, Normalize(lines))
	})
}

// Update runs fn as the location's unit of work.
func (l *Ledger) Update(ctx context.Context, locationID uuid.UUID, fn func(ctx context.Context, tx domain.InventoryTx) error) error {
	release, err := l.locks.Acquire(ctx, lockKey(locationID))
	if err != nil {
		return err
	}
	defer release()
	return l.repo.WithLocation(ctx, locationID, fn)
}

// Reserve deducts from a location or fails with a *ShortfallError leaving the
// location untouched.
func (l *Ledger) Reserve(ctx context.Context, locationID uuid.UUID, deductions []domain.StockLine, after AfterFunc) error {
	return l.Update(ctx, locationID, func(ctx context.Context, tx domain.InventoryTx) error {
		lines, err := tx.Lines(ctx)
		if err != nil {
			return err
		}
		left, err := TryReserve(lines, deductions)
		if err != nil {
			return err
		}
		if err := tx.Replace(ctx, left); err != nil {
			return err
		}
		if after != nil {
			return after(ctx, tx)
		}
		return nil
	})
}

// Receive adds stock to a location. It fails only on storage or lock errors.
func (l *Ledger) Receive(ctx context.Context, locationID uuid.UUID, additions []domain.StockLine, after AfterFunc) error {
	return l.Update(ctx, locationID, func(ctx context.Context, tx domain.InventoryTx) error {
		lines, err := tx.Lines(ctx)
		if err != nil {
			return err
		}
		if err := tx.Replace(ctx, Merge(lines, additions)); err != nil {
			return err
		}
		if after != nil {
			return after(ctx, tx)
		}
		return nil
	})
}
