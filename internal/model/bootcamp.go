package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Careers a bootcamp may advertise. Anything outside this list is a
// validation error.
var ValidCareers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// Bootcamp mirrors the `bootcamps` table. AverageRating and
// AverageCost are aggregates maintained by the queue consumer and are
// null until the first review/course arrives.
type Bootcamp struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Careers       []string  `json:"careers"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGI      bool      `json:"acceptGi"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	Photo         string    `json:"photo"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate aggregates all schema violations for a bootcamp payload.
func (b *Bootcamp) Validate() []string {
	var v []string
	if b.Name == "" {
		v = append(v, "Please add a name")
	} else if utf8.RuneCountInString(b.Name) > 50 {
		v = append(v, "Name can not be more than 50 characters")
	}
	if b.Description == "" {
		v = append(v, "Please add a description")
	} else if utf8.RuneCountInString(b.Description) > 500 {
		v = append(v, "Description can not be more than 500 characters")
	}
	if b.Email != "" && !emailRe.MatchString(b.Email) {
		v = append(v, "Please add a valid email")
	}
	if utf8.RuneCountInString(b.Phone) > 20 {
		v = append(v, "Phone number can not be longer than 20 characters")
	}
	for _, c := range b.Careers {
		if !validCareer(c) {
			v = append(v, fmt.Sprintf("%q is not a valid career", c))
		}
	}
	return v
}

func validCareer(c string) bool {
	for _, ok := range ValidCareers {
		if c == ok {
			return true
		}
	}
	return false
}
