package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// Transaction is one unit of work. Saves made through Session reach the
// database together on Commit, or not at all.
type Transaction struct {
	ctx     context.Context
	tx      *gorm.DB
	logger  *slog.Logger
	started time.Time
	done    bool
}

// NewTransaction begins a transaction on db.
func NewTransaction(ctx context.Context, db Database) (*Transaction, error) {
	tx := db.Session(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &Transaction{
		ctx:     ctx,
		tx:      tx,
		logger:  db.Logger(),
		started: time.Now(),
	}, nil
}

// Session returns the session bound to the transaction.
func (t *Transaction) Session() *gorm.DB {
	return t.tx
}

// Done reports whether the transaction was committed or rolled back.
func (t *Transaction) Done() bool {
	return t.done
}

// Commit commits. Calling it on a finished transaction does nothing.
func (t *Transaction) Commit() error {
	if t.done {
		return nil
	}
	if err := t.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.done = true
	t.logger.DebugContext(t.ctx, "transaction committed", "duration", time.Since(t.started))
	return nil
}

// Rollback rolls back and logs cause at warn level when it is not nil.
// Calling it on a finished transaction does nothing.
func (t *Transaction) Rollback(cause error) error {
	if t.done {
		return nil
	}
	t.done = true
	if cause != nil {
		t.logger.WarnContext(t.ctx, "transaction rolled back",
			"duration", time.Since(t.started),
			"cause", cause,
		)
	}
	if err := t.tx.Rollback().Error; err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// WithTransaction runs fn inside a transaction and commits when fn returns
// nil. When fn fails the transaction is rolled back and fn's error returned,
// joined with the rollback error if that fails too.
func WithTransaction(ctx context.Context, db Database, fn func(tx *gorm.DB) error) error {
	txn, err := NewTransaction(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		if !txn.done {
			_ = txn.Rollback(nil)
		}
	}()

	if err := fn(txn.Session()); err != nil {
		if rbErr := txn.Rollback(err); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return txn.Commit()
}
