//go:build integration

package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sas-esd/esdmail/libs/db"
	"github.com/sas-esd/esdmail/libs/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: ESD_TEST_DATABASE_URL=postgres://... go test -tags=integration ./libs/db/...
func TestConnectionIntegration(t *testing.T) {
	pool := dbtest.Open(t)
	dbtest.Exec(t, pool, `CREATE TEMP TABLE conn_check (id BYTEA PRIMARY KEY, name TEXT NOT NULL)`)
	conn := pool.Conn()
	ctx := context.Background()

	t.Run("FetchColumnNoRows", func(t *testing.T) {
		v, ok, err := conn.FetchColumn(ctx, `SELECT name FROM conn_check WHERE id = $1`, []byte{0x01})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("InsertThenFetch", func(t *testing.T) {
		require.NoError(t, conn.Insert(ctx, "conn_check", map[string]any{"id": []byte{0x02}, "name": "serial"}))

		v, ok, err := conn.FetchColumn(ctx, `SELECT name FROM conn_check WHERE id = $1`, []byte{0x02})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "serial", v)
	})

	t.Run("DuplicateInsertIsUniqueViolation", func(t *testing.T) {
		row := map[string]any{"id": []byte{0x03}, "name": "first"}
		require.NoError(t, conn.Insert(ctx, "conn_check", row))
		err := conn.Insert(ctx, "conn_check", row)
		require.Error(t, err)
		assert.True(t, db.IsUniqueViolation(err))
	})

	t.Run("FetchColumnQueryError", func(t *testing.T) {
		_, ok, err := conn.FetchColumn(ctx, `SELECT name FROM conn_check_missing`)
		require.Error(t, err)
		assert.False(t, ok)
		var qe *db.QueryError
		require.True(t, errors.As(err, &qe))
		assert.Equal(t, `SELECT name FROM conn_check_missing`, qe.Query)
	})

	t.Run("ExecQueryError", func(t *testing.T) {
		err := conn.Exec(ctx, `UPDATE conn_check_missing SET name = 'x'`)
		var qe *db.QueryError
		assert.True(t, errors.As(err, &qe))
	})
}
