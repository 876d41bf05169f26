package model

import "time"

// Skill levels a course may require.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Course mirrors the `courses` table. A course always belongs to a
// bootcamp; UserID is the owning publisher, copied from the parent at
// creation time.
type Course struct {
	ID                   uint64    `json:"id"`
	BootcampID           uint64    `json:"bootcamp"`
	UserID               uint64    `json:"user"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Weeks                int       `json:"weeks"`
	Tuition              float64   `json:"tuition"`
	MinimumSkill         string    `json:"minimumSkill"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	CreatedAt            time.Time `json:"createdAt"`

	// PopulatedBootcamp carries the expanded parent when the caller
	// asked for it; nil otherwise.
	PopulatedBootcamp *BootcampRef `json:"bootcampInfo,omitempty"`
}

// BootcampRef is the sub-selected parent expansion used by populate.
type BootcampRef struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate aggregates all schema violations for a course payload.
func (c *Course) Validate() []string {
	var v []string
	if c.Title == "" {
		v = append(v, "Please add a course title")
	}
	if c.Description == "" {
		v = append(v, "Please add a description")
	}
	if c.Weeks <= 0 {
		v = append(v, "Please add number of weeks")
	}
	if c.Tuition <= 0 {
		v = append(v, "Please add a tuition cost")
	}
	switch c.MinimumSkill {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
	default:
		v = append(v, "Minimum skill must be one of beginner, intermediate or advanced")
	}
	return v
}
