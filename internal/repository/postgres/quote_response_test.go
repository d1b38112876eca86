package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/repository/postgres"
)

var quoteRequestCols = []string{"id", "company_id", "pickup_location", "delivery_location", "goods_category",
	"goods_type", "packaging_type", "total_quantity", "is_stackable", "length", "width", "height", "dimension_unit",
	"volume", "volumetric_weight", "pickup_date", "shipment_type", "contact_mobile", "contact_email", "notes",
	"status", "created_at", "updated_at"}

var quoteResponseCols = []string{"id", "quote_request_id", "responder_id", "quote_amount", "currency", "validity",
	"terms_and_conditions", "notes", "estimated_delivery_days", "status", "created_at", "updated_at"}

func quoteRequestRows(id, companyID uuid.UUID, status domain.QuoteRequestStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(quoteRequestCols).AddRow(id.String(), companyID.String(), "Mumbai", "Delhi",
		"Electronics", "Fragile", "Box", int64(10), true, 2.0, 1.5, 1.0, "m", 30.0, 5000.0, now.Add(48*time.Hour),
		"Road", "9876543210", "ops@acme.in", "", string(status), now, now)
}

func quoteResponseRows() *sqlmock.Rows {
	return sqlmock.NewRows(quoteResponseCols)
}

func addQuoteResponse(rows *sqlmock.Rows, id, requestID, responderID uuid.UUID, status domain.QuoteResponseStatus) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id.String(), requestID.String(), responderID.String(), 45000.0, "INR", now.Add(72*time.Hour),
		"", "", int64(4), string(status), now, now)
}

func TestQuoteResponseRepository_Accept(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewQuoteResponseRepository(db)
	ctx := context.Background()

	requestID, companyID := uuid.New(), uuid.New()
	responseID, siblingID := uuid.New(), uuid.New()
	carrier, other := uuid.New(), uuid.New()

	t.Run("Success", func(t *testing.T) {
		now := time.Now().UTC()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT quote_request_id FROM quote_responses WHERE id = \\$1").
			WithArgs(responseID).
			WillReturnRows(sqlmock.NewRows([]string{"quote_request_id"}).AddRow(requestID.String()))
		mock.ExpectQuery("FROM quote_requests WHERE id = \\$1 FOR UPDATE").
			WithArgs(requestID).
			WillReturnRows(quoteRequestRows(requestID, companyID, domain.QuoteRequestStatusOpen))
		mock.ExpectQuery("FROM quote_responses WHERE id = \\$1 FOR UPDATE").
			WithArgs(responseID).
			WillReturnRows(addQuoteResponse(quoteResponseRows(), responseID, requestID, carrier, domain.QuoteResponseStatusPending))
		mock.ExpectExec("UPDATE quote_responses SET status = \\$1, updated_at = \\$2 WHERE id = \\$3").
			WithArgs(domain.QuoteResponseStatusAccepted, now, responseID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("WHERE quote_request_id = \\$3 AND id <> \\$4 AND status = \\$5").
			WithArgs(domain.QuoteResponseStatusRejected, now, requestID, responseID, domain.QuoteResponseStatusPending).
			WillReturnRows(addQuoteResponse(quoteResponseRows(), siblingID, requestID, other, domain.QuoteResponseStatusRejected))
		mock.ExpectExec("UPDATE quote_requests SET status = \\$1, updated_at = \\$2 WHERE id = \\$3").
			WithArgs(domain.QuoteRequestStatusClosed, now, requestID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := repo.Accept(ctx, responseID, now)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteResponseStatusAccepted, result.Accepted.Status)
		assert.Equal(t, now, result.Accepted.UpdatedAt)
		assert.Equal(t, domain.QuoteRequestStatusClosed, result.Request.Status)
		assert.Equal(t, companyID, result.Request.CompanyID)
		require.Len(t, result.Rejected, 1)
		assert.Equal(t, siblingID, result.Rejected[0].ID)
		assert.Equal(t, 4, *result.Accepted.EstimatedDeliveryDays)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RequestAlreadyClosed", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT quote_request_id FROM quote_responses WHERE id = \\$1").
			WithArgs(responseID).
			WillReturnRows(sqlmock.NewRows([]string{"quote_request_id"}).AddRow(requestID.String()))
		mock.ExpectQuery("FROM quote_requests WHERE id = \\$1 FOR UPDATE").
			WithArgs(requestID).
			WillReturnRows(quoteRequestRows(requestID, companyID, domain.QuoteRequestStatusClosed))
		mock.ExpectRollback()

		result, err := repo.Accept(ctx, responseID, time.Now())
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ResponseNoLongerPending", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT quote_request_id FROM quote_responses WHERE id = \\$1").
			WithArgs(responseID).
			WillReturnRows(sqlmock.NewRows([]string{"quote_request_id"}).AddRow(requestID.String()))
		mock.ExpectQuery("FROM quote_requests WHERE id = \\$1 FOR UPDATE").
			WithArgs(requestID).
			WillReturnRows(quoteRequestRows(requestID, companyID, domain.QuoteRequestStatusOpen))
		mock.ExpectQuery("FROM quote_responses WHERE id = \\$1 FOR UPDATE").
			WithArgs(responseID).
			WillReturnRows(addQuoteResponse(quoteResponseRows(), responseID, requestID, carrier, domain.QuoteResponseStatusRejected))
		mock.ExpectRollback()

		_, err := repo.Accept(ctx, responseID, time.Now())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownResponse", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT quote_request_id FROM quote_responses WHERE id = \\$1").
			WithArgs(responseID).
			WillReturnRows(sqlmock.NewRows([]string{"quote_request_id"}))
		mock.ExpectRollback()

		_, err := repo.Accept(ctx, responseID, time.Now())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQuoteResponseRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewQuoteResponseRepository(db)
	ctx := context.Background()

	days := 3
	newResponse := func() *domain.QuoteResponse {
		now := time.Now().UTC()
		return &domain.QuoteResponse{
			ID:                    uuid.New(),
			QuoteRequestID:        uuid.New(),
			ResponderID:           uuid.New(),
			QuoteAmount:           18000,
			Currency:              domain.CurrencyINR,
			Validity:              now.Add(7 * 24 * time.Hour),
			EstimatedDeliveryDays: &days,
			Status:                domain.QuoteResponseStatusPending,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
	}

	t.Run("Success", func(t *testing.T) {
		resp := newResponse()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM quote_requests WHERE id = \\$1 FOR SHARE").
			WithArgs(resp.QuoteRequestID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("open"))
		mock.ExpectExec("INSERT INTO quote_responses").
			WithArgs(resp.ID, resp.QuoteRequestID, resp.ResponderID, resp.QuoteAmount, resp.Currency, resp.Validity,
				"", "", int64(3), resp.Status, resp.CreatedAt, resp.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Create(ctx, resp))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RequestClosed", func(t *testing.T) {
		resp := newResponse()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM quote_requests WHERE id = \\$1 FOR SHARE").
			WithArgs(resp.QuoteRequestID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("closed"))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Create(ctx, resp), domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RequestMissing", func(t *testing.T) {
		resp := newResponse()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM quote_requests WHERE id = \\$1 FOR SHARE").
			WithArgs(resp.QuoteRequestID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Create(ctx, resp), domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateID", func(t *testing.T) {
		resp := newResponse()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM quote_requests WHERE id = \\$1 FOR SHARE").
			WithArgs(resp.QuoteRequestID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("open"))
		mock.ExpectExec("INSERT INTO quote_responses").
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Create(ctx, resp), domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQuoteResponseRepository_ClaimExpiring(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewQuoteResponseRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	to := now.Add(48 * time.Hour)

	t.Run("StampsUnremindedRows", func(t *testing.T) {
		id, requestID := uuid.New(), uuid.New()
		mock.ExpectQuery("UPDATE quote_responses r SET reminded_at = \\$5 FROM quote_requests q (.+) AND r.reminded_at IS NULL RETURNING r.id").
			WithArgs(domain.QuoteResponseStatusPending, domain.QuoteRequestStatusOpen, now, to, now).
			WillReturnRows(addQuoteResponse(quoteResponseRows(), id, requestID, uuid.New(), domain.QuoteResponseStatusPending))

		got, err := repo.ClaimExpiring(ctx, now, to, now)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, id, got[0].ID)
		assert.Equal(t, requestID, got[0].QuoteRequestID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyReminded", func(t *testing.T) {
		mock.ExpectQuery("UPDATE quote_responses r SET reminded_at").
			WillReturnRows(quoteResponseRows())

		got, err := repo.ClaimExpiring(ctx, now, to, now)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
