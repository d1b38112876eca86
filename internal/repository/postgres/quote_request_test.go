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

func TestQuoteRequestRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewQuoteRequestRepository(db)
	ctx := context.Background()

	t.Run("CreateDuplicate", func(t *testing.T) {
		q := &domain.QuoteRequest{ID: uuid.New(), CompanyID: uuid.New(), Status: domain.QuoteRequestStatusOpen}
		mock.ExpectExec("INSERT INTO quote_requests").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, q)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByID", func(t *testing.T) {
		id, company := uuid.New(), uuid.New()
		mock.ExpectQuery("FROM quote_requests WHERE id = \\$1").
			WithArgs(id).
			WillReturnRows(quoteRequestRows(id, company, domain.QuoteRequestStatusOpen))

		q, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, company, q.CompanyID)
		assert.Equal(t, domain.DimensionUnit("m"), q.Dimensions.Unit)
		assert.Equal(t, "ops@acme.in", q.Contact.Email)
		assert.True(t, q.IsOpen())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		mock.ExpectQuery("FROM quote_requests WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(quoteRequestCols))

		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListOpenEscapesLikePatterns", func(t *testing.T) {
		mock.ExpectQuery("WHERE status = \\$1 AND shipment_type = \\$2 AND pickup_location ILIKE \\$3 ORDER BY created_at DESC").
			WithArgs(domain.QuoteRequestStatusOpen, domain.ShipmentType("Road"), `%50\%\_off%`).
			WillReturnRows(sqlmock.NewRows(quoteRequestCols))

		list, err := repo.ListOpen(ctx, domain.QuoteRequestFilter{ShipmentType: "Road", PickupLocation: "50%_off"})
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListByCompany", func(t *testing.T) {
		company := uuid.New()
		rows := quoteRequestRows(uuid.New(), company, domain.QuoteRequestStatusClosed)
		mock.ExpectQuery("FROM quote_requests WHERE company_id = \\$1").
			WithArgs(company).
			WillReturnRows(rows)

		list, err := repo.ListByCompany(ctx, company)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, domain.QuoteRequestStatusClosed, list[0].Status)
		assert.WithinDuration(t, time.Now().Add(48*time.Hour), list[0].PickupDate, time.Minute)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
