package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/repository"
)

type quoteRequestRepository struct {
	db *sql.DB
}

func NewQuoteRequestRepository(db *sql.DB) repository.QuoteRequestRepository {
	return &quoteRequestRepository{db: db}
}

const quoteRequestColumns = `id, company_id, pickup_location, delivery_location, goods_category, goods_type,
	packaging_type, total_quantity, is_stackable, length, width, height, dimension_unit, volume,
	volumetric_weight, pickup_date, shipment_type, contact_mobile, contact_email, notes, status,
	created_at, updated_at`

func scanQuoteRequest(row scanner) (*domain.QuoteRequest, error) {
	q := &domain.QuoteRequest{}
	err := row.Scan(&q.ID, &q.CompanyID, &q.PickupLocation, &q.DeliveryLocation, &q.GoodsCategory, &q.GoodsType,
		&q.PackagingType, &q.TotalQuantity, &q.IsStackable, &q.Dimensions.Length, &q.Dimensions.Width,
		&q.Dimensions.Height, &q.Dimensions.Unit, &q.Volume, &q.VolumetricWeight, &q.PickupDate, &q.ShipmentType,
		&q.Contact.MobileNumber, &q.Contact.Email, &q.Notes, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func scanQuoteRequests(rows *sql.Rows) ([]domain.QuoteRequest, error) {
	defer rows.Close()
	var out []domain.QuoteRequest
	for rows.Next() {
		q, err := scanQuoteRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (r *quoteRequestRepository) Create(ctx context.Context, q *domain.QuoteRequest) error {
	logger.EnterMethod("quoteRequestRepository.Create", "companyID", q.CompanyID)

	query := `INSERT INTO quote_requests (` + quoteRequestColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	logger.DatabaseCall("INSERT", "quote_requests", "requestID", q.ID)
	_, err := r.db.ExecContext(ctx, query, q.ID, q.CompanyID, q.PickupLocation, q.DeliveryLocation, q.GoodsCategory,
		q.GoodsType, q.PackagingType, q.TotalQuantity, q.IsStackable, q.Dimensions.Length, q.Dimensions.Width,
		q.Dimensions.Height, q.Dimensions.Unit, q.Volume, q.VolumetricWeight, q.PickupDate, q.ShipmentType,
		q.Contact.MobileNumber, q.Contact.Email, q.Notes, q.Status, q.CreatedAt, q.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "requestID", q.ID)
	if err != nil {
		logger.ExitMethodWithError("quoteRequestRepository.Create", err)
		return mapError(err, "quote request")
	}
	logger.ExitMethod("quoteRequestRepository.Create", "requestID", q.ID)
	return nil
}

func (r *quoteRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteRequest, error) {
	query := `SELECT ` + quoteRequestColumns + ` FROM quote_requests WHERE id = $1`
	q, err := scanQuoteRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "quote request")
	}
	return q, nil
}

func (r *quoteRequestRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.QuoteRequest, error) {
	out := make(map[uuid.UUID]*domain.QuoteRequest, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + quoteRequestColumns + ` FROM quote_requests WHERE id = ANY($1::uuid[])`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, err
	}
	list, err := scanQuoteRequests(rows)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func (r *quoteRequestRepository) ListOpen(ctx context.Context, f domain.QuoteRequestFilter) ([]domain.QuoteRequest, error) {
	query := `SELECT ` + quoteRequestColumns + ` FROM quote_requests WHERE status = $1`
	args := []any{domain.QuoteRequestStatusOpen}
	if f.GoodsCategory != "" {
		args = append(args, f.GoodsCategory)
		query += fmt.Sprintf(" AND goods_category = $%d", len(args))
	}
	if f.ShipmentType != "" {
		args = append(args, f.ShipmentType)
		query += fmt.Sprintf(" AND shipment_type = $%d", len(args))
	}
	if f.PickupLocation != "" {
		args = append(args, likePattern(f.PickupLocation))
		query += fmt.Sprintf(" AND pickup_location ILIKE $%d", len(args))
	}
	if f.DeliveryLocation != "" {
		args = append(args, likePattern(f.DeliveryLocation))
		query += fmt.Sprintf(" AND delivery_location ILIKE $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	logger.DatabaseCall("SELECT", "quote_requests", "filters", len(args)-1)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanQuoteRequests(rows)
}

func (r *quoteRequestRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.QuoteRequest, error) {
	query := `SELECT ` + quoteRequestColumns + ` FROM quote_requests WHERE company_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	return scanQuoteRequests(rows)
}
