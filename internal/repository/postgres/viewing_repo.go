package postgres

import (
	"context"
	"errors"
	"time"

	"keyskeeper-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type viewingRepo struct {
	db *pgxpool.Pool
}

func NewViewingRepository(db *pgxpool.Pool) domain.ViewingRepository {
	return &viewingRepo{db: db}
}

const viewingColumns = `id, listing_id, tenant_id, slot_at, message, status, created_at, updated_at`

func scanViewing(row pgx.Row) (*domain.ViewingRequest, error) {
	var v domain.ViewingRequest
	err := row.Scan(&v.ID, &v.ListingID, &v.TenantID, &v.SlotAt, &v.Message,
		&v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *viewingRepo) Create(ctx context.Context, v *domain.ViewingRequest) error {
	query := `INSERT INTO viewing_requests (listing_id, tenant_id, slot_at, message, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRow(ctx, query,
		v.ListingID, v.TenantID, v.SlotAt, v.Message, v.Status, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
}

func (r *viewingRepo) GetByID(ctx context.Context, id int64) (*domain.ViewingRequest, error) {
	query := `SELECT ` + viewingColumns + ` FROM viewing_requests WHERE id = $1`
	v, err := scanViewing(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

func (r *viewingRepo) FetchByListing(ctx context.Context, listingID int64, limit, offset int) ([]domain.ViewingRequest, int64, error) {
	query := `SELECT ` + viewingColumns + ` FROM viewing_requests
              WHERE listing_id = $1 ORDER BY slot_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, listingID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var viewings []domain.ViewingRequest
	for rows.Next() {
		v, err := scanViewing(rows)
		if err != nil {
			return nil, 0, err
		}
		viewings = append(viewings, *v)
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM viewing_requests WHERE listing_id = $1`, listingID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return viewings, total, nil
}

func (r *viewingRepo) FetchByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]domain.ViewingRequest, int64, error) {
	query := `SELECT ` + viewingColumns + ` FROM viewing_requests
              WHERE tenant_id = $1 ORDER BY slot_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var viewings []domain.ViewingRequest
	for rows.Next() {
		v, err := scanViewing(rows)
		if err != nil {
			return nil, 0, err
		}
		viewings = append(viewings, *v)
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM viewing_requests WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return viewings, total, nil
}

func (r *viewingRepo) HasApprovedSlot(ctx context.Context, listingID int64, slotAt time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM viewing_requests WHERE listing_id = $1 AND slot_at = $2 AND status = 'approved')`,
		listingID, slotAt).Scan(&exists)
	return exists, err
}

func (r *viewingRepo) UpdateStatus(ctx context.Context, id int64, status domain.ViewingStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE viewing_requests SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
