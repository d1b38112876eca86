package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/repository"
)

const (
	uniqueViolation  = "23505"
	defaultTxTimeout = 5 * time.Second
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.QuoteRequestRepository
	repository.QuoteResponseRepository
	repository.CommunityRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		UserRepository:          NewUserRepository(db),
		QuoteRequestRepository:  NewQuoteRequestRepository(db),
		QuoteResponseRepository: NewQuoteResponseRepository(db),
		CommunityRepository:     NewCommunityRepository(db),
		NotificationRepository:  NewNotificationRepository(db),
	}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

// withTx runs fn inside a transaction. Any error from fn rolls back.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// mapError converts driver errors into domain errors.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(what + " not found")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.Conflict(what + " already exists")
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
