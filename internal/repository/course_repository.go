package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/iliyamo/bootcamp-directory/internal/model"
	"github.com/iliyamo/bootcamp-directory/internal/query"
)

// CourseFields is the allow-list for the course list endpoint.
var CourseFields = query.FieldMap{
	"id":                   "t.id",
	"bootcamp":             "t.bootcamp_id",
	"user":                 "t.user_id",
	"title":                "t.title",
	"description":          "t.description",
	"weeks":                "t.weeks",
	"tuition":              "t.tuition",
	"minimumSkill":         "t.minimum_skill",
	"scholarshipAvailable": "t.scholarship_available",
	"createdAt":            "t.created_at",
}

// CourseBootcampPopulate expands the parent bootcamp on global course
// listings, sub-selected to name and description.
var CourseBootcampPopulate = Populate{
	Table:      "bootcamps",
	ForeignKey: "bootcamp_id",
	As:         "bootcamp",
	Fields: query.FieldMap{
		"id":          "p.id",
		"name":        "p.name",
		"description": "p.description",
	},
	Select: []string{"id", "name", "description"},
}

const courseCols = `c.id, c.bootcamp_id, c.user_id, c.title, c.description, c.weeks,
	c.tuition, c.minimum_skill, c.scholarship_available, c.created_at`

type CourseRepo struct {
	DB     *sql.DB
	lister Lister
}

func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{
		DB:     db,
		lister: Lister{DB: db, Table: "courses", Fields: CourseFields},
	}
}

// List runs a parsed query-builder request, expanding the parent
// bootcamp.
func (r *CourseRepo) List(ctx context.Context, lq *query.ListQuery) ([]map[string]any, int64, error) {
	pop := CourseBootcampPopulate
	return r.lister.List(ctx, lq, &pop)
}

// ListByBootcamp returns all courses under one bootcamp, newest
// first. Zero matches is a valid empty result.
func (r *CourseRepo) ListByBootcamp(ctx context.Context, bootcampID uint64) ([]model.Course, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+courseCols+" FROM courses c WHERE c.bootcamp_id=? ORDER BY c.created_at DESC",
		bootcampID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.BootcampID, &c.UserID, &c.Title, &c.Description,
			&c.Weeks, &c.Tuition, &c.MinimumSkill, &c.ScholarshipAvailable, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches one course with its parent expansion.
func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (model.Course, error) {
	var (
		c   model.Course
		ref model.BootcampRef
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+courseCols+`, b.id, b.name, b.description
		 FROM courses c JOIN bootcamps b ON b.id = c.bootcamp_id
		 WHERE c.id=? LIMIT 1`, id).
		Scan(&c.ID, &c.BootcampID, &c.UserID, &c.Title, &c.Description, &c.Weeks,
			&c.Tuition, &c.MinimumSkill, &c.ScholarshipAvailable, &c.CreatedAt,
			&ref.ID, &ref.Name, &ref.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	c.PopulatedBootcamp = &ref
	return c, nil
}

// Create inserts the course and backfills its id.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO courses (bootcamp_id, user_id, title, description, weeks, tuition,
			minimum_skill, scholarship_available)
		 VALUES (?,?,?,?,?,?,?,?)`,
		c.BootcampID, c.UserID, c.Title, c.Description, c.Weeks, c.Tuition,
		c.MinimumSkill, c.ScholarshipAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update persists the mutable fields.
func (r *CourseRepo) Update(ctx context.Context, c *model.Course) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE courses SET title=?, description=?, weeks=?, tuition=?, minimum_skill=?,
			scholarship_available=?
		 WHERE id=?`,
		c.Title, c.Description, c.Weeks, c.Tuition, c.MinimumSkill,
		c.ScholarshipAvailable, c.ID)
	return err
}

// Delete removes the course.
func (r *CourseRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM courses WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecomputeAverageCost refreshes the bootcamp's tuition mean, rounded
// to the nearest 10 as the directory displays it. Called by the queue
// consumer after course mutations.
func (r *CourseRepo) RecomputeAverageCost(ctx context.Context, bootcampID uint64) error {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		"SELECT AVG(tuition) FROM courses WHERE bootcamp_id=?", bootcampID).Scan(&avg)
	if err != nil {
		return err
	}
	if !avg.Valid {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE bootcamps SET average_cost=NULL WHERE id=?", bootcampID)
		return err
	}
	rounded := math.Round(avg.Float64/10) * 10
	_, err = r.DB.ExecContext(ctx,
		"UPDATE bootcamps SET average_cost=? WHERE id=?", rounded, bootcampID)
	return err
}
