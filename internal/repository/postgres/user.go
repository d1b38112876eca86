package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, role, name, email, phone, company_name, gst_number, license_number, push_token, created_at, updated_at`

func scanUser(row scanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Role, &u.Name, &u.Email, &u.Phone, &u.Company, &u.GSTNumber, &u.License,
		&u.PushToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	users := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

func (r *userRepository) Upsert(ctx context.Context, u *domain.User) error {
	logger.EnterMethod("userRepository.Upsert", "userID", u.ID, "role", u.Role)

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	query := `INSERT INTO users (id, role, name, email, phone, company_name, gst_number, license_number, push_token, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
	              company_name = EXCLUDED.company_name, gst_number = EXCLUDED.gst_number,
	              license_number = EXCLUDED.license_number, updated_at = EXCLUDED.updated_at`
	logger.DatabaseCall("UPSERT", "users", "userID", u.ID)
	res, err := r.db.ExecContext(ctx, query, u.ID, u.Role, u.Name, u.Email, u.Phone, u.Company, u.GSTNumber,
		u.License, u.PushToken, u.CreatedAt, u.UpdatedAt)
	var affected int64
	if err == nil {
		affected, _ = res.RowsAffected()
	}
	logger.DatabaseResult("UPSERT", affected, err, "userID", u.ID)
	if err != nil {
		logger.ExitMethodWithError("userRepository.Upsert", err, "userID", u.ID)
		return err
	}
	logger.ExitMethod("userRepository.Upsert", "userID", u.ID)
	return nil
}

func (r *userRepository) SetPushToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE users SET push_token = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, token, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}
