package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sinless777/helix-support/internal/domain"
)

// RoleRepository defines persistence access for the role ledger.
// GetByUserID returns pgx.ErrNoRows when no record exists; callers
// translate that into the default role.
type RoleRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.RoleRecord, error)
	List(ctx context.Context) ([]domain.RoleRecord, error)
	Upsert(ctx context.Context, record *domain.RoleRecord) error
	HasAnyWithRole(ctx context.Context, role domain.Role) (bool, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetByUserID(ctx context.Context, userID string) (*domain.RoleRecord, error) {
	const query = `
        SELECT id, user_id, role, assigned_by, created_at, updated_at
        FROM roles WHERE user_id=$1`

	var record domain.RoleRecord
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&record.ID,
		&record.UserID,
		&record.Role,
		&record.AssignedBy,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.RoleRecord, error) {
	const query = `
        SELECT id, user_id, role, assigned_by, created_at, updated_at
        FROM roles ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.RoleRecord
	for rows.Next() {
		var record domain.RoleRecord
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Role,
			&record.AssignedBy,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Upsert creates the record for first-time assignments, otherwise
// patches role and assigned_by with a fresh updated_at.
func (r *roleRepository) Upsert(ctx context.Context, record *domain.RoleRecord) error {
	const query = `
        INSERT INTO roles (user_id, role, assigned_by)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO UPDATE
            SET role=EXCLUDED.role, assigned_by=EXCLUDED.assigned_by, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		record.UserID,
		record.Role,
		record.AssignedBy,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
}

func (r *roleRepository) HasAnyWithRole(ctx context.Context, role domain.Role) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM roles WHERE role=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, role).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
