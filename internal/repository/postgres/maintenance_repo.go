package postgres

import (
	"context"
	"errors"
	"time"

	"keyskeeper-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type maintenanceRepo struct {
	db *pgxpool.Pool
}

func NewMaintenanceRepository(db *pgxpool.Pool) domain.MaintenanceRepository {
	return &maintenanceRepo{db: db}
}

const maintenanceColumns = `id, listing_id, tenant_id, title, description, priority, status, resolved_at, created_at, updated_at`

func scanMaintenance(row pgx.Row) (*domain.MaintenanceRequest, error) {
	var m domain.MaintenanceRequest
	err := row.Scan(&m.ID, &m.ListingID, &m.TenantID, &m.Title, &m.Description,
		&m.Priority, &m.Status, &m.ResolvedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *maintenanceRepo) Create(ctx context.Context, m *domain.MaintenanceRequest) error {
	query := `INSERT INTO maintenance_requests (listing_id, tenant_id, title, description, priority, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRow(ctx, query,
		m.ListingID, m.TenantID, m.Title, m.Description, m.Priority, m.Status,
		m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id int64) (*domain.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests WHERE id = $1`
	m, err := scanMaintenance(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return m, err
}

func (r *maintenanceRepo) FetchByStatus(ctx context.Context, status domain.MaintenanceStatus, limit, offset int) ([]domain.MaintenanceRequest, int64, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests
              WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []domain.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *m)
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM maintenance_requests WHERE ($1 = '' OR status = $1)`,
		string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *maintenanceRepo) FetchByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]domain.MaintenanceRequest, int64, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests
              WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []domain.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *m)
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM maintenance_requests WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *maintenanceRepo) UpdateStatus(ctx context.Context, id int64, status domain.MaintenanceStatus, resolvedAt *time.Time) error {
	result, err := r.db.Exec(ctx,
		`UPDATE maintenance_requests SET status = $2, resolved_at = $3, updated_at = $4 WHERE id = $1`,
		id, status, resolvedAt, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
