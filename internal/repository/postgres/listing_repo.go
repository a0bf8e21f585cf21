package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keyskeeper-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type listingRepo struct {
	db *pgxpool.Pool
}

func NewListingRepository(db *pgxpool.Pool) domain.ListingRepository {
	return &listingRepo{db: db}
}

const listingColumns = `id, landlord_id, title, description, address, suburb, city,
	rent_per_week, bedrooms, bathrooms, furnished, pets_allowed, smokers_allowed,
	amenities, images, available_from, is_available, compliance_status,
	latitude, longitude, created_at, updated_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(&l.ID, &l.LandlordID, &l.Title, &l.Description, &l.Address, &l.Suburb, &l.City,
		&l.RentPerWeek, &l.Bedrooms, &l.Bathrooms, &l.Furnished, &l.PetsAllowed, &l.SmokersAllowed,
		pq.Array(&l.Amenities), pq.Array(&l.Images), &l.AvailableFrom, &l.Available, &l.ComplianceStatus,
		&l.Latitude, &l.Longitude, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepo) Create(ctx context.Context, l *domain.Listing) error {
	query := `INSERT INTO listings (landlord_id, title, description, address, suburb, city,
                rent_per_week, bedrooms, bathrooms, furnished, pets_allowed, smokers_allowed,
                amenities, images, available_from, is_available, compliance_status,
                latitude, longitude, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
              RETURNING id`
	return r.db.QueryRow(ctx, query,
		l.LandlordID, l.Title, l.Description, l.Address, l.Suburb, l.City,
		l.RentPerWeek, l.Bedrooms, l.Bathrooms, l.Furnished, l.PetsAllowed, l.SmokersAllowed,
		pq.Array(l.Amenities), pq.Array(l.Images), l.AvailableFrom, l.Available, l.ComplianceStatus,
		l.Latitude, l.Longitude, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (r *listingRepo) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return l, err
}

// availableWhere builds the WHERE clause and args for the public search.
// Availability is hardcoded; no client flag can surface an unavailable
// listing. Suburb and city match as substrings so partial input still finds
// listings.
func availableWhere(f domain.ListingFilter) (string, []any) {
	where := `WHERE is_available = TRUE`
	args := []any{}
	n := 0

	add := func(clause string, value any) {
		n++
		args = append(args, value)
		where += fmt.Sprintf(" AND "+clause, n)
	}

	if f.Suburb != "" {
		add("suburb ILIKE $%d", "%"+f.Suburb+"%")
	}
	if f.City != "" {
		add("city ILIKE $%d", "%"+f.City+"%")
	}
	if f.MinRent > 0 {
		add("rent_per_week >= $%d", f.MinRent)
	}
	if f.MaxRent > 0 {
		add("rent_per_week <= $%d", f.MaxRent)
	}
	if f.MinBedrooms > 0 {
		add("bedrooms >= $%d", f.MinBedrooms)
	}
	if f.PetsAllowed != nil {
		add("pets_allowed = $%d", *f.PetsAllowed)
	}

	return where, args
}

// FetchAvailable applies the public search filters server-side.
func (r *listingRepo) FetchAvailable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, int64, error) {
	where, args := availableWhere(f)
	n := len(args)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM listings `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM listings %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		listingColumns, where, n+1, n+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, *l)
	}

	return listings, total, rows.Err()
}

func (r *listingRepo) FetchByLandlord(ctx context.Context, landlordID int64, limit, offset int) ([]domain.Listing, int64, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE landlord_id = $1
              ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, landlordID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, *l)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE landlord_id = $1`, landlordID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *listingRepo) Update(ctx context.Context, l *domain.Listing) error {
	query := `UPDATE listings SET
		title = $2,
		description = $3,
		address = $4,
		suburb = $5,
		city = $6,
		rent_per_week = $7,
		bedrooms = $8,
		bathrooms = $9,
		furnished = $10,
		pets_allowed = $11,
		smokers_allowed = $12,
		amenities = $13,
		images = $14,
		available_from = $15,
		is_available = $16,
		latitude = $17,
		longitude = $18,
		updated_at = $19
	WHERE id = $1`
	result, err := r.db.Exec(ctx, query,
		l.ID, l.Title, l.Description, l.Address, l.Suburb, l.City,
		l.RentPerWeek, l.Bedrooms, l.Bathrooms, l.Furnished, l.PetsAllowed, l.SmokersAllowed,
		pq.Array(l.Amenities), pq.Array(l.Images), l.AvailableFrom, l.Available,
		l.Latitude, l.Longitude, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *listingRepo) SetCompliance(ctx context.Context, id int64, status domain.ComplianceStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE listings SET compliance_status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RefreshAvailability flips is_available on for listings whose available_from
// date has arrived. Driven by the nightly cron job.
func (r *listingRepo) RefreshAvailability(ctx context.Context, asOf time.Time) (int64, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE listings SET is_available = TRUE, updated_at = $1
         WHERE is_available = FALSE AND available_from <= $2`,
		asOf, asOf.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *listingRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *listingRepo) CountByCompliance(ctx context.Context) (map[domain.ComplianceStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT compliance_status, COUNT(*) FROM listings GROUP BY compliance_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplianceStatus]int64)
	for rows.Next() {
		var status domain.ComplianceStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
