package postgres

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/repository"
)

type quoteResponseRepository struct {
	db *sql.DB
}

func NewQuoteResponseRepository(db *sql.DB) repository.QuoteResponseRepository {
	return &quoteResponseRepository{db: db}
}

const quoteResponseColumns = `id, quote_request_id, responder_id, quote_amount, currency, validity,
	terms_and_conditions, notes, estimated_delivery_days, status, created_at, updated_at`

func scanQuoteResponse(row scanner) (*domain.QuoteResponse, error) {
	q := &domain.QuoteResponse{}
	var days sql.NullInt32
	err := row.Scan(&q.ID, &q.QuoteRequestID, &q.ResponderID, &q.QuoteAmount, &q.Currency, &q.Validity,
		&q.TermsAndConditions, &q.Notes, &days, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if days.Valid {
		d := int(days.Int32)
		q.EstimatedDeliveryDays = &d
	}
	return q, nil
}

func scanQuoteResponses(rows *sql.Rows) ([]domain.QuoteResponse, error) {
	defer rows.Close()
	var out []domain.QuoteResponse
	for rows.Next() {
		q, err := scanQuoteResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// lockQuoteRequestStatus reads the parent request's status under the given lock mode.
func lockQuoteRequestStatus(ctx context.Context, tx *sql.Tx, requestID uuid.UUID, lockMode string) (domain.QuoteRequestStatus, error) {
	var status domain.QuoteRequestStatus
	query := `SELECT status FROM quote_requests WHERE id = $1 ` + lockMode
	logger.DatabaseCall("SELECT "+lockMode, "quote_requests", "requestID", requestID)
	if err := tx.QueryRowContext(ctx, query, requestID).Scan(&status); err != nil {
		return "", mapError(err, "quote request")
	}
	return status, nil
}

func (r *quoteResponseRepository) Create(ctx context.Context, q *domain.QuoteResponse) error {
	logger.EnterMethod("quoteResponseRepository.Create", "requestID", q.QuoteRequestID, "responderID", q.ResponderID)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		status, err := lockQuoteRequestStatus(ctx, tx, q.QuoteRequestID, "FOR SHARE")
		if err != nil {
			return err
		}
		if status != domain.QuoteRequestStatusOpen {
			return domain.Conflict("quote request is closed")
		}

		var days sql.NullInt32
		if q.EstimatedDeliveryDays != nil {
			days = sql.NullInt32{Int32: int32(*q.EstimatedDeliveryDays), Valid: true}
		}
		query := `INSERT INTO quote_responses (` + quoteResponseColumns + `)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		logger.DatabaseCall("INSERT", "quote_responses", "responseID", q.ID)
		_, err = tx.ExecContext(ctx, query, q.ID, q.QuoteRequestID, q.ResponderID, q.QuoteAmount, q.Currency,
			q.Validity, q.TermsAndConditions, q.Notes, days, q.Status, q.CreatedAt, q.UpdatedAt)
		logger.DatabaseResult("INSERT", 1, err, "responseID", q.ID)
		return mapError(err, "quote response")
	})
	if err != nil {
		logger.ExitMethodWithError("quoteResponseRepository.Create", err, "requestID", q.QuoteRequestID)
		return err
	}
	logger.ExitMethod("quoteResponseRepository.Create", "responseID", q.ID)
	return nil
}

func (r *quoteResponseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteResponse, error) {
	query := `SELECT ` + quoteResponseColumns + ` FROM quote_responses WHERE id = $1`
	q, err := scanQuoteResponse(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "quote response")
	}
	return q, nil
}

func (r *quoteResponseRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.QuoteResponse, error) {
	query := `SELECT ` + quoteResponseColumns + ` FROM quote_responses WHERE quote_request_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	return scanQuoteResponses(rows)
}

func (r *quoteResponseRepository) ListByRequests(ctx context.Context, requestIDs []uuid.UUID) ([]domain.QuoteResponse, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + quoteResponseColumns + ` FROM quote_responses WHERE quote_request_id = ANY($1::uuid[]) ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(requestIDs)))
	if err != nil {
		return nil, err
	}
	return scanQuoteResponses(rows)
}

func (r *quoteResponseRepository) ListByResponder(ctx context.Context, responderID uuid.UUID) ([]domain.QuoteResponse, error) {
	query := `SELECT ` + quoteResponseColumns + ` FROM quote_responses WHERE responder_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, responderID)
	if err != nil {
		return nil, err
	}
	return scanQuoteResponses(rows)
}

// Accept serializes on the parent request row. Both statuses are re-read
// after the lock is held, so a concurrent accept that committed first makes
// this one fail with a conflict.
func (r *quoteResponseRepository) Accept(ctx context.Context, responseID uuid.UUID, now time.Time) (*domain.AcceptResult, error) {
	logger.EnterMethod("quoteResponseRepository.Accept", "responseID", responseID)

	var result *domain.AcceptResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var requestID uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT quote_request_id FROM quote_responses WHERE id = $1`, responseID).Scan(&requestID)
		if err != nil {
			return mapError(err, "quote response")
		}

		logger.DatabaseCall("SELECT FOR UPDATE", "quote_requests", "requestID", requestID)
		req, err := scanQuoteRequest(tx.QueryRowContext(ctx,
			`SELECT `+quoteRequestColumns+` FROM quote_requests WHERE id = $1 FOR UPDATE`, requestID))
		if err != nil {
			return mapError(err, "quote request")
		}
		if !req.IsOpen() {
			return domain.Conflict("quote request is already closed")
		}

		resp, err := scanQuoteResponse(tx.QueryRowContext(ctx,
			`SELECT `+quoteResponseColumns+` FROM quote_responses WHERE id = $1 FOR UPDATE`, responseID))
		if err != nil {
			return mapError(err, "quote response")
		}
		if !resp.IsPending() {
			return domain.Conflict("quote response is no longer pending")
		}

		logger.DatabaseCall("UPDATE", "quote_responses", "responseID", responseID, "status", domain.QuoteResponseStatusAccepted)
		if _, err := tx.ExecContext(ctx, `UPDATE quote_responses SET status = $1, updated_at = $2 WHERE id = $3`,
			domain.QuoteResponseStatusAccepted, now, responseID); err != nil {
			return err
		}
		resp.Status = domain.QuoteResponseStatusAccepted
		resp.UpdatedAt = now

		logger.DatabaseCall("UPDATE", "quote_responses", "requestID", requestID, "status", domain.QuoteResponseStatusRejected)
		rows, err := tx.QueryContext(ctx, `UPDATE quote_responses SET status = $1, updated_at = $2
			WHERE quote_request_id = $3 AND id <> $4 AND status = $5
			RETURNING `+quoteResponseColumns,
			domain.QuoteResponseStatusRejected, now, requestID, responseID, domain.QuoteResponseStatusPending)
		if err != nil {
			return err
		}
		rejected, err := scanQuoteResponses(rows)
		if err != nil {
			return err
		}

		logger.DatabaseCall("UPDATE", "quote_requests", "requestID", requestID, "status", domain.QuoteRequestStatusClosed)
		if _, err := tx.ExecContext(ctx, `UPDATE quote_requests SET status = $1, updated_at = $2 WHERE id = $3`,
			domain.QuoteRequestStatusClosed, now, requestID); err != nil {
			return err
		}
		req.Status = domain.QuoteRequestStatusClosed
		req.UpdatedAt = now

		result = &domain.AcceptResult{Accepted: resp, Request: req, Rejected: rejected}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("quoteResponseRepository.Accept", err, "responseID", responseID)
		return nil, err
	}
	logger.ExitMethod("quoteResponseRepository.Accept", "responseID", responseID, "rejected", len(result.Rejected))
	return result, nil
}

// ClaimExpiring stamps reminded_at and returns the stamped rows in one
// statement, so concurrent job runs never claim the same response.
func (r *quoteResponseRepository) ClaimExpiring(ctx context.Context, from, to, now time.Time) ([]domain.QuoteResponse, error) {
	query := `UPDATE quote_responses r SET reminded_at = $5
	          FROM quote_requests q
	          WHERE q.id = r.quote_request_id AND r.status = $1 AND q.status = $2
	            AND r.validity >= $3 AND r.validity < $4 AND r.reminded_at IS NULL
	          RETURNING r.id, r.quote_request_id, r.responder_id, r.quote_amount, r.currency, r.validity,
	                    r.terms_and_conditions, r.notes, r.estimated_delivery_days, r.status, r.created_at, r.updated_at`
	rows, err := r.db.QueryContext(ctx, query, domain.QuoteResponseStatusPending, domain.QuoteRequestStatusOpen, from, to, now)
	if err != nil {
		return nil, err
	}
	list, err := scanQuoteResponses(rows)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Validity.Before(list[j].Validity) })
	return list, nil
}
