package pgerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/ticinfraestructura/sigah-sub000/internal/adapters/out/postgres/pgerr"
	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"unique violation", &pgconn.PgError{Code: pgerr.UniqueViolation}, true},
		{"serialization failure", fmt.Errorf("commit: %w", &pgconn.PgError{Code: pgerr.SerializationFailure}), true},
		{"deadlock", &pgconn.PgError{Code: pgerr.DeadlockDetected}, true},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"plain", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pgerr.Translate(tt.err, "delivery", "d-1")
			if tt.conflict {
				require.ErrorIs(t, got, errs.ErrConflict)
				var conflict *errs.ConflictError
				require.ErrorAs(t, got, &conflict)
				assert.Equal(t, "d-1", conflict.ID)
				return
			}
			assert.Equal(t, tt.err, got)
		})
	}

	require.NoError(t, pgerr.Translate(nil, "delivery", "d-1"))
}
