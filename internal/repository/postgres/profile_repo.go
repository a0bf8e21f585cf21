package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"keyskeeper-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, auth_id, email, role, full_name, phone, verified, preferences, created_at, updated_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var prefs []byte
	err := row.Scan(&p.ID, &p.AuthID, &p.Email, &p.Role, &p.FullName, &p.Phone,
		&p.Verified, &prefs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return err
	}
	if p.Preferences == nil {
		prefs = []byte(`{}`)
	}
	query := `INSERT INTO profiles (auth_id, email, role, full_name, phone, verified, preferences, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return r.db.QueryRow(ctx, query,
		p.AuthID, p.Email, p.Role, p.FullName, p.Phone, p.Verified, prefs,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (r *profileRepo) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *profileRepo) GetByAuthID(ctx context.Context, authID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE auth_id = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, authID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *profileRepo) Update(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles SET email = $2, full_name = $3, phone = $4, updated_at = $5 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, p.ID, p.Email, p.FullName, p.Phone, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *profileRepo) UpdatePreferences(ctx context.Context, authID string, prefs map[string]any) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	query := `UPDATE profiles SET preferences = $2, updated_at = $3 WHERE auth_id = $1`
	result, err := r.db.Exec(ctx, query, authID, data, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *profileRepo) List(ctx context.Context, role domain.Role, limit, offset int) ([]domain.Profile, int64, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
              WHERE ($1 = '' OR role = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, string(role), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *p)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE ($1 = '' OR role = $1)`, string(role)).Scan(&total); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *profileRepo) SetVerified(ctx context.Context, id int64, verified bool) error {
	result, err := r.db.Exec(ctx, `UPDATE profiles SET verified = $2, updated_at = $3 WHERE id = $1`, id, verified, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *profileRepo) SetRole(ctx context.Context, id int64, role domain.Role) error {
	result, err := r.db.Exec(ctx, `UPDATE profiles SET role = $2, updated_at = $3 WHERE id = $1`, id, role, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *profileRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Role]int64)
	for rows.Next() {
		var role domain.Role
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
