package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/query"
)

// BootcampFields is the allow-list for filtering/sorting/selecting
// bootcamps through the query builder.
var BootcampFields = query.FieldMap{
	"id":            "t.id",
	"user":          "t.user_id",
	"name":          "t.name",
	"slug":          "t.slug",
	"description":   "t.description",
	"website":       "t.website",
	"phone":         "t.phone",
	"email":         "t.email",
	"address":       "t.address",
	"careers":       "t.careers",
	"housing":       "t.housing",
	"jobAssistance": "t.job_assistance",
	"jobGuarantee":  "t.job_guarantee",
	"acceptGi":      "t.accept_gi",
	"averageRating": "t.average_rating",
	"averageCost":   "t.average_cost",
	"photo":         "t.photo",
	"createdAt":     "t.created_at",
}

const bootcampCols = `id, user_id, name, slug, description, website, phone, email, address,
	latitude, longitude, careers, housing, job_assistance, job_guarantee, accept_gi,
	average_rating, average_cost, photo, created_at`

type BootcampRepo struct {
	DB     *sql.DB
	lister Lister
}

func NewBootcampRepo(db *sql.DB) *BootcampRepo {
	return &BootcampRepo{
		DB: db,
		lister: Lister{
			DB:         db,
			Table:      "bootcamps",
			Fields:     BootcampFields,
			JSONFields: map[string]bool{"careers": true},
		},
	}
}

// List runs a parsed query-builder request.
func (r *BootcampRepo) List(ctx context.Context, lq *query.ListQuery) ([]map[string]any, int64, error) {
	return r.lister.List(ctx, lq, nil)
}

func scanBootcamp(row *sql.Row) (model.Bootcamp, error) {
	var (
		b       model.Bootcamp
		careers []byte
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Slug, &b.Description, &b.Website,
		&b.Phone, &b.Email, &b.Address, &b.Latitude, &b.Longitude, &careers,
		&b.Housing, &b.JobAssistance, &b.JobGuarantee, &b.AcceptGI,
		&b.AverageRating, &b.AverageCost, &b.Photo, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	if err != nil {
		return b, err
	}
	if len(careers) > 0 {
		_ = json.Unmarshal(careers, &b.Careers)
	}
	return b, nil
}

// GetByID fetches one bootcamp or ErrNotFound.
func (r *BootcampRepo) GetByID(ctx context.Context, id uint64) (model.Bootcamp, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+bootcampCols+" FROM bootcamps WHERE id=? LIMIT 1", id)
	return scanBootcamp(row)
}

// ExistsForOwner reports whether the user already published a
// bootcamp. Backs the one-bootcamp-per-publisher rule.
func (r *BootcampRepo) ExistsForOwner(ctx context.Context, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM bootcamps WHERE user_id=? LIMIT 1", userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Create inserts the bootcamp and backfills its id.
func (r *BootcampRepo) Create(ctx context.Context, b *model.Bootcamp) error {
	careers, err := json.Marshal(b.Careers)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO bootcamps (user_id, name, slug, description, website, phone, email,
			address, latitude, longitude, careers, housing, job_assistance, job_guarantee, accept_gi)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email,
		b.Address, b.Latitude, b.Longitude, careers, b.Housing, b.JobAssistance,
		b.JobGuarantee, b.AcceptGI)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Update persists the mutable fields. The id and owner never change.
func (r *BootcampRepo) Update(ctx context.Context, b *model.Bootcamp) error {
	careers, err := json.Marshal(b.Careers)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE bootcamps SET name=?, slug=?, description=?, website=?, phone=?, email=?,
			address=?, latitude=?, longitude=?, careers=?, housing=?, job_assistance=?,
			job_guarantee=?, accept_gi=?
		 WHERE id=?`,
		b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email,
		b.Address, b.Latitude, b.Longitude, careers, b.Housing, b.JobAssistance,
		b.JobGuarantee, b.AcceptGI, b.ID)
	return err
}

// Delete removes the bootcamp; courses and reviews cascade.
func (r *BootcampRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM bootcamps WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePhoto stores the generated upload filename.
func (r *BootcampRepo) UpdatePhoto(ctx context.Context, id uint64, filename string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE bootcamps SET photo=? WHERE id=?", filename, id)
	return err
}

// WithinRadius returns bootcamps whose coordinates fall inside the
// great-circle distance (miles) around the given point.
func (r *BootcampRepo) WithinRadius(ctx context.Context, lat, lng, miles float64) ([]model.Bootcamp, error) {
	// Haversine over an Earth radius of 3963 miles.
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bootcampCols+` FROM bootcamps
		 WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		   AND 3963 * ACOS(
				COS(RADIANS(?)) * COS(RADIANS(latitude)) * COS(RADIANS(longitude) - RADIANS(?)) +
				SIN(RADIANS(?)) * SIN(RADIANS(latitude))
		   ) <= ?`,
		lat, lng, lat, miles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bootcamp
	for rows.Next() {
		var (
			b       model.Bootcamp
			careers []byte
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Slug, &b.Description, &b.Website,
			&b.Phone, &b.Email, &b.Address, &b.Latitude, &b.Longitude, &careers,
			&b.Housing, &b.JobAssistance, &b.JobGuarantee, &b.AcceptGI,
			&b.AverageRating, &b.AverageCost, &b.Photo, &b.CreatedAt); err != nil {
			return nil, err
		}
		if len(careers) > 0 {
			_ = json.Unmarshal(careers, &b.Careers)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
