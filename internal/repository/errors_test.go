package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicate(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, isDuplicate(dup))
	assert.True(t, isDuplicate(fmt.Errorf("insert user: %w", dup)))

	assert.False(t, isDuplicate(nil))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1451}))
	// Message text mentioning the code is not a duplicate-key error.
	assert.False(t, isDuplicate(errors.New("row 1062 rejected")))
}
