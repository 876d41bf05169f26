package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/query"
)

// ReviewFields is the allow-list for the review list endpoint.
var ReviewFields = query.FieldMap{
	"id":        "t.id",
	"bootcamp":  "t.bootcamp_id",
	"user":      "t.user_id",
	"title":     "t.title",
	"text":      "t.text",
	"rating":    "t.rating",
	"createdAt": "t.created_at",
}

// ErrAlreadyReviewed is returned when a user writes a second review
// for the same bootcamp.
var ErrAlreadyReviewed = errors.New("user has already reviewed this bootcamp")

const reviewCols = "id, bootcamp_id, user_id, title, text, rating, created_at"

type ReviewRepo struct {
	DB     *sql.DB
	lister Lister
}

func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{
		DB:     db,
		lister: Lister{DB: db, Table: "reviews", Fields: ReviewFields},
	}
}

// List runs a parsed query-builder request.
func (r *ReviewRepo) List(ctx context.Context, lq *query.ListQuery) ([]map[string]any, int64, error) {
	return r.lister.List(ctx, lq, nil)
}

// ListByBootcamp returns all reviews under one bootcamp, newest
// first. Zero matches is a valid empty result.
func (r *ReviewRepo) ListByBootcamp(ctx context.Context, bootcampID uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE bootcamp_id=? ORDER BY created_at DESC",
		bootcampID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		var v model.Review
		if err := rows.Scan(&v.ID, &v.BootcampID, &v.UserID, &v.Title, &v.Text,
			&v.Rating, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetByID fetches one review or ErrNotFound.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	var v model.Review
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE id=? LIMIT 1", id).
		Scan(&v.ID, &v.BootcampID, &v.UserID, &v.Title, &v.Text, &v.Rating, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

// Create inserts the review. A second review by the same user for the
// same bootcamp trips the unique key and maps to ErrAlreadyReviewed.
func (r *ReviewRepo) Create(ctx context.Context, v *model.Review) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (bootcamp_id, user_id, title, text, rating) VALUES (?,?,?,?,?)",
		v.BootcampID, v.UserID, v.Title, v.Text, v.Rating)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyReviewed
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// Update persists title, text and rating.
func (r *ReviewRepo) Update(ctx context.Context, v *model.Review) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET title=?, text=?, rating=? WHERE id=?",
		v.Title, v.Text, v.Rating, v.ID)
	return err
}

// Delete removes the review.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecomputeAverageRating refreshes the bootcamp's rating mean. Called
// by the queue consumer after review mutations.
func (r *ReviewRepo) RecomputeAverageRating(ctx context.Context, bootcampID uint64) error {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		"SELECT AVG(rating) FROM reviews WHERE bootcamp_id=?", bootcampID).Scan(&avg)
	if err != nil {
		return err
	}
	if !avg.Valid {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE bootcamps SET average_rating=NULL WHERE id=?", bootcampID)
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE bootcamps SET average_rating=? WHERE id=?", avg.Float64, bootcampID)
	return err
}
