package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsert(t *testing.T) {
	query, args := buildInsert("mail_template", map[string]any{
		"mail_template_type_id": []byte{2},
		"id":                    []byte{1},
		"created_at":            "2020-12-05 18:20:50.000",
	})

	assert.Equal(t, `INSERT INTO "mail_template" ("created_at", "id", "mail_template_type_id") VALUES ($1, $2, $3)`, query)
	require.Len(t, args, 3)
	assert.Equal(t, "2020-12-05 18:20:50.000", args[0])
	assert.Equal(t, []byte{1}, args[1])
	assert.Equal(t, []byte{2}, args[2])
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestQueryErrorUnwraps(t *testing.T) {
	cause := errors.New("relation does not exist")
	var err error = &QueryError{Query: "SELECT 1", Err: cause}
	assert.ErrorIs(t, err, cause)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "SELECT 1", qe.Query)
}
