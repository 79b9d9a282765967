package base

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintViolations(t *testing.T) {
	unique := fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_clinic_sessions_regular"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_clinic_sessions_slot"}
	exclusion := &pgconn.PgError{Code: "23P01", ConstraintName: "ex_clinic_slots_overlap"}

	tests := []struct {
		name       string
		err        error
		wantUnique string
		wantFK     string
		wantExcl   string
	}{
		{name: "unique wrapped", err: unique, wantUnique: "uq_clinic_sessions_regular"},
		{name: "foreign key", err: fk, wantFK: "fk_clinic_sessions_slot"},
		{name: "exclusion", err: exclusion, wantExcl: "ex_clinic_slots_overlap"},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantUnique, UniqueViolation(tt.err))
			assert.Equal(t, tt.wantFK, ForeignKeyViolation(tt.err))
			assert.Equal(t, tt.wantExcl, ExclusionViolation(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("other")))
}
