package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{
			"pgx message",
			errors.New(`ERROR: duplicate key value violates unique constraint "uniq_relocations_owner_in_progress" (SQLSTATE 23505)`),
			true,
		},
		{
			"wrapped pgx message",
			fmt.Errorf("create relocation: %w",
				errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)")),
			true,
		},
		{
			"constraint message without sqlstate",
			errors.New(`duplicate key value violates unique constraint "uniq_file_blobs_file_seq"`),
			true,
		},
		{"other sqlstate", errors.New("ERROR: null value in column (SQLSTATE 23502)"), false},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKey(tt.err))
		})
	}
}

func TestIsRecordNotFound(t *testing.T) {
	assert.True(t, IsRecordNotFound(gorm.ErrRecordNotFound))
	assert.True(t, IsRecordNotFound(fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsRecordNotFound(errors.New("boom")))
	assert.False(t, IsRecordNotFound(nil))
}
