package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// TxConfig bounds a transaction: MaxWait for acquiring a connection and starting,
// Timeout for the whole unit of work, Retries for serialization failures and deadlocks.
type TxConfig struct {
	MaxWait time.Duration
	Timeout time.Duration
	Retries int
}

// DefaultTxConfig mirrors the configuration defaults.
var DefaultTxConfig = TxConfig{MaxWait: 5 * time.Second, Timeout: 10 * time.Second, Retries: 3}

// TxManager runs units of work inside a database transaction.
type TxManager struct {
	db     DB
	cfg    TxConfig
	logger *zap.Logger
}

func NewTxManager(db DB, cfg TxConfig, logger *zap.Logger) *TxManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxManager{db: db, cfg: cfg, logger: logger}
}

// WithTx commits when fn returns nil and rolls back otherwise.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt <= m.cfg.Retries; attempt++ {
		err = m.run(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		m.logger.Warn("Retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 20 * time.Millisecond):
		}
	}
	return err
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	beginCtx := ctx
	if m.cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		beginCtx, cancel = context.WithTimeout(ctx, m.cfg.MaxWait)
		defer cancel()
	}
	tx, err := m.db.BeginTx(beginCtx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	workCtx := ctx
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		workCtx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(workCtx, tx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return err
	}
	return tx.Commit(workCtx)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// IsUniqueViolation reports a 23505 error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsNotFound reports pgx.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
