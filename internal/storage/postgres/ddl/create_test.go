package ddl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvetl/internal/storage"
	"csvetl/pkg/records"
)

type execRepo struct {
	storage.Repository
	stmts []string
	err   error
}

func (e *execRepo) Exec(_ context.Context, sql string) error {
	e.stmts = append(e.stmts, sql)
	return e.err
}

func TestMapType(t *testing.T) {
	t.Parallel()

	for kind, want := range map[string]string{
		"int":       "BIGINT",
		" BIGINT ":  "BIGINT",
		"float":     "DOUBLE PRECISION",
		"bool":      "BOOLEAN",
		"date":      "DATE",
		"timestamp": "TIMESTAMPTZ",
		"time":      "TEXT",
		"string":    "TEXT",
		"":          "TEXT",
	} {
		assert.Equal(t, want, MapType(kind), kind)
	}
}

func TestEnsureTable(t *testing.T) {
	t.Parallel()

	tbl := records.New("id", "neighbourhood", "price", "last_review_date", "avg_price")
	tbl.SetKind("id", records.KindInt)
	tbl.SetKind("price", records.KindInt)
	tbl.SetKind("last_review_date", records.KindDate)
	tbl.SetKind("avg_price", records.KindFloat)

	repo := &execRepo{}
	err := EnsureTable(context.Background(), repo, storage.TableSpec{
		Table:      "public.listings",
		Source:     tbl,
		PrimaryKey: []string{"id"},
		NotNull:    []string{"price"},
		Replace:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		`DROP TABLE IF EXISTS "public"."listings";`,
		"CREATE TABLE IF NOT EXISTS \"public\".\"listings\" (\n" +
			"  \"id\" BIGINT NOT NULL,\n" +
			"  \"neighbourhood\" TEXT,\n" +
			"  \"price\" BIGINT NOT NULL,\n" +
			"  \"last_review_date\" DATE,\n" +
			"  \"avg_price\" DOUBLE PRECISION,\n" +
			"  PRIMARY KEY (\"id\")\n" +
			");",
	}, repo.stmts)
}

func TestEnsureTable_ExecError(t *testing.T) {
	t.Parallel()

	boom := errors.New("permission denied for schema public")
	repo := &execRepo{err: boom}
	err := EnsureTable(context.Background(), repo, storage.TableSpec{Table: "t", Source: records.New("a")})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "apply DDL")
}
