package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	for name, want := range map[string]string{
		"Devworks Bootcamp":      "devworks-bootcamp",
		"ModernTech  Bootcamp!!": "moderntech-bootcamp",
		"  UI/UX & Design  ":     "ui-ux-design",
		"already-slugged":        "already-slugged",
		"123 Go":                 "123-go",
		"":                       "",
		"!!!":                    "",
	} {
		assert.Equal(t, want, Slugify(name), "input %q", name)
	}
}
