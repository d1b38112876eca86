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

type communityRepository struct {
	db *sql.DB
}

func NewCommunityRepository(db *sql.DB) repository.CommunityRepository {
	return &communityRepository{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const communityColumns = `id, name, description, created_by, is_public, allowed_roles, rules, avatar, banner, created_at, updated_at`

func scanCommunity(row scanner) (*domain.Community, error) {
	c := &domain.Community{}
	var roles, rules []string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.IsPublic, pq.Array(&roles), pq.Array(&rules),
		&c.Avatar, &c.Banner, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.AllowedRoles = make([]domain.Role, len(roles))
	for i, r := range roles {
		c.AllowedRoles[i] = domain.Role(r)
	}
	c.Rules = rules
	return c, nil
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func (r *communityRepository) Create(ctx context.Context, c *domain.Community) error {
	logger.EnterMethod("communityRepository.Create", "name", c.Name, "createdBy", c.CreatedBy)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO communities (` + communityColumns + `)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		logger.DatabaseCall("INSERT", "communities", "communityID", c.ID)
		if _, err := tx.ExecContext(ctx, query, c.ID, c.Name, c.Description, c.CreatedBy, c.IsPublic,
			pq.Array(roleStrings(c.AllowedRoles)), pq.Array(nonNil(c.Rules)), c.Avatar, c.Banner, c.CreatedAt, c.UpdatedAt); err != nil {
			return mapError(err, "community")
		}
		for _, m := range c.Members {
			if err := insertMember(ctx, tx, c.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("communityRepository.Create", err, "communityID", c.ID)
		return err
	}
	logger.ExitMethod("communityRepository.Create", "communityID", c.ID)
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Community, error) {
	return r.load(ctx, r.db, id, "")
}

// load reads the community row and its child rows. lockClause is appended
// to the community select.
func (r *communityRepository) load(ctx context.Context, q queryer, id uuid.UUID, lockClause string) (*domain.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities WHERE id = $1 ` + lockClause
	c, err := scanCommunity(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "community")
	}

	members, err := listMembers(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	c.Members = members[id]

	rows, err := q.QueryContext(ctx, `SELECT id, community_id, user_id, name, role, reason, status, requested_at, reviewed_by, reviewed_at
		FROM community_join_requests WHERE community_id = $1 ORDER BY requested_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var jr domain.JoinRequest
		var reviewedBy uuid.NullUUID
		var reviewedAt sql.NullTime
		if err := rows.Scan(&jr.ID, &jr.CommunityID, &jr.UserID, &jr.Name, &jr.Role, &jr.Reason, &jr.Status,
			&jr.RequestedAt, &reviewedBy, &reviewedAt); err != nil {
			return nil, err
		}
		if reviewedBy.Valid {
			jr.ReviewedBy = &reviewedBy.UUID
		}
		if reviewedAt.Valid {
			jr.ReviewedAt = &reviewedAt.Time
		}
		c.JoinRequests = append(c.JoinRequests, jr)
	}
	return c, rows.Err()
}

func listMembers(ctx context.Context, q queryer, communityIDs []uuid.UUID) (map[uuid.UUID][]domain.Member, error) {
	rows, err := q.QueryContext(ctx, `SELECT community_id, user_id, role, joined_at FROM community_members
		WHERE community_id = ANY($1::uuid[]) ORDER BY joined_at`, pq.Array(uuidStrings(communityIDs)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]domain.Member, len(communityIDs))
	for rows.Next() {
		var cid uuid.UUID
		var m domain.Member
		if err := rows.Scan(&cid, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		out[cid] = append(out[cid], m)
	}
	return out, rows.Err()
}

func (r *communityRepository) ListVisible(ctx context.Context, actor domain.Actor) ([]domain.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities c
	          WHERE c.is_public
	             OR $1 = ANY(c.allowed_roles)
	             OR EXISTS (SELECT 1 FROM community_members m WHERE m.community_id = c.id AND m.user_id = $2)
	          ORDER BY c.created_at DESC`
	logger.DatabaseCall("SELECT", "communities", "actorID", actor.ID, "role", actor.Role)
	return r.list(ctx, query, string(actor.Role), actor.ID)
}

func (r *communityRepository) ListWithPendingBefore(ctx context.Context, before time.Time) ([]domain.Community, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT community_id FROM community_join_requests
		WHERE status = $1 AND requested_at < $2`, domain.JoinRequestStatusPending, before)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Community, 0, len(ids))
	for _, id := range ids {
		c, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *communityRepository) list(ctx context.Context, query string, args ...any) ([]domain.Community, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []domain.Community
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	members, err := listMembers(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Members = members[out[i].ID]
	}
	return out, nil
}

// Mutate holds the community row lock for the whole load-change-validate-write
// cycle and writes only the child rows that changed.
func (r *communityRepository) Mutate(ctx context.Context, id uuid.UUID, fn repository.CommunityMutation) (*domain.Community, error) {
	logger.EnterMethod("communityRepository.Mutate", "communityID", id)

	var out *domain.Community
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		before, err := r.load(ctx, tx, id, "FOR UPDATE")
		if err != nil {
			return err
		}
		after := before.Clone()
		if err := fn(after); err != nil {
			return err
		}
		if err := after.Validate(); err != nil {
			return err
		}
		if err := writeChanges(ctx, tx, before, after); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE communities SET updated_at = $1 WHERE id = $2`, after.UpdatedAt, id); err != nil {
			return err
		}
		out = after
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("communityRepository.Mutate", err, "communityID", id)
		return nil, err
	}
	logger.ExitMethod("communityRepository.Mutate", "communityID", id)
	return out, nil
}

func writeChanges(ctx context.Context, tx *sql.Tx, before, after *domain.Community) error {
	prevMembers := make(map[uuid.UUID]domain.Member, len(before.Members))
	for _, m := range before.Members {
		prevMembers[m.UserID] = m
	}
	for _, m := range after.Members {
		prev, ok := prevMembers[m.UserID]
		delete(prevMembers, m.UserID)
		switch {
		case !ok:
			if err := insertMember(ctx, tx, after.ID, m); err != nil {
				return err
			}
		case prev.Role != m.Role:
			logger.DatabaseCall("UPDATE", "community_members", "communityID", after.ID, "userID", m.UserID)
			if _, err := tx.ExecContext(ctx, `UPDATE community_members SET role = $1 WHERE community_id = $2 AND user_id = $3`,
				m.Role, after.ID, m.UserID); err != nil {
				return err
			}
		}
	}
	for userID := range prevMembers {
		logger.DatabaseCall("DELETE", "community_members", "communityID", after.ID, "userID", userID)
		if _, err := tx.ExecContext(ctx, `DELETE FROM community_members WHERE community_id = $1 AND user_id = $2`,
			after.ID, userID); err != nil {
			return err
		}
	}

	prevRequests := make(map[uuid.UUID]domain.JoinRequest, len(before.JoinRequests))
	for _, jr := range before.JoinRequests {
		prevRequests[jr.ID] = jr
	}
	for _, jr := range after.JoinRequests {
		prev, ok := prevRequests[jr.ID]
		switch {
		case !ok:
			logger.DatabaseCall("INSERT", "community_join_requests", "communityID", after.ID, "userID", jr.UserID)
			_, err := tx.ExecContext(ctx, `INSERT INTO community_join_requests
				(id, community_id, user_id, name, role, reason, status, requested_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				jr.ID, after.ID, jr.UserID, jr.Name, jr.Role, jr.Reason, jr.Status, jr.RequestedAt)
			if err != nil {
				return mapError(err, "pending join request")
			}
		case prev.Status != jr.Status:
			logger.DatabaseCall("UPDATE", "community_join_requests", "requestID", jr.ID, "status", jr.Status)
			_, err := tx.ExecContext(ctx, `UPDATE community_join_requests SET status = $1, reviewed_by = $2, reviewed_at = $3
				WHERE id = $4`, jr.Status, jr.ReviewedBy, jr.ReviewedAt, jr.ID)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func insertMember(ctx context.Context, tx *sql.Tx, communityID uuid.UUID, m domain.Member) error {
	logger.DatabaseCall("INSERT", "community_members", "communityID", communityID, "userID", m.UserID)
	_, err := tx.ExecContext(ctx, `INSERT INTO community_members (community_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4) ON CONFLICT (community_id, user_id) DO NOTHING`,
		communityID, m.UserID, m.Role, m.JoinedAt)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
