package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/raywall/delete-record-function/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

type fakeDB struct {
	query string
	args  []any
	rows  int64
	err   error
	calls int
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.calls++
	f.query = query
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return fakeResult{rows: f.rows}, nil
}

func TestStore_DeleteRecord(t *testing.T) {
	t.Run("single key", func(t *testing.T) {
		db := &fakeDB{rows: 1}
		err := New(db).DeleteRecord(context.Background(), "functions", map[string]any{
			"id": "a6c18e06-aa03-45ea-9e9e-6d9328746951",
		})
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM "functions" WHERE "id" = $1`, db.query)
		assert.Equal(t, []any{"a6c18e06-aa03-45ea-9e9e-6d9328746951"}, db.args)
	})

	t.Run("zero rows is success", func(t *testing.T) {
		db := &fakeDB{rows: 0}
		assert.NoError(t, New(db).DeleteRecord(context.Background(), "functions", map[string]any{"id": "gone"}))
	})

	t.Run("driver error propagated", func(t *testing.T) {
		pqErr := &pq.Error{Code: "42P01", Message: `relation "nope" does not exist`}
		db := &fakeDB{err: pqErr}
		err := New(db).DeleteRecord(context.Background(), "nope", map[string]any{"id": "1"})

		var got *pq.Error
		require.True(t, errors.As(err, &got))
		assert.Equal(t, pq.ErrorCode("42P01"), got.Code)
	})

	t.Run("null key value rejected", func(t *testing.T) {
		db := &fakeDB{}
		err := New(db).DeleteRecord(context.Background(), "functions", map[string]any{"id": nil})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `key attribute "id"`)
		assert.Zero(t, db.calls)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		db := &fakeDB{}
		err := New(db).DeleteRecord(context.Background(), "functions", map[string]any{})
		assert.ErrorIs(t, err, store.ErrEmptyKey)
		assert.Zero(t, db.calls)
	})
}

func TestBuildDelete(t *testing.T) {
	query, args, err := BuildDelete("billing.orders", map[string]any{
		"sk":           json.Number("42"),
		"pk":           "customer#1",
		`weird"column`: map[string]any{"a": "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, `DELETE FROM "billing"."orders" WHERE "pk" = $1 AND "sk" = $2 AND "weird""column" = $3`, query)
	assert.Equal(t, []any{"customer#1", "42", `{"a":"b"}`}, args)
}
