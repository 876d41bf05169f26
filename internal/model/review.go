package model

import (
	"time"
	"unicode/utf8"
)

// Review mirrors the `reviews` table. The (bootcamp_id, user_id) pair
// is unique: a user reviews a bootcamp at most once.
type Review struct {
	ID         uint64    `json:"id"`
	BootcampID uint64    `json:"bootcamp"`
	UserID     uint64    `json:"user"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate aggregates all schema violations for a review payload.
func (r *Review) Validate() []string {
	var v []string
	if r.Title == "" {
		v = append(v, "Please add a title for the review")
	} else if utf8.RuneCountInString(r.Title) > 100 {
		v = append(v, "Title can not be more than 100 characters")
	}
	if r.Text == "" {
		v = append(v, "Please add some text")
	}
	if r.Rating < 1 || r.Rating > 10 {
		v = append(v, "Please add a rating between 1 and 10")
	}
	return v
}
