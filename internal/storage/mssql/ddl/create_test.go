package ddl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gddl "csvetl/internal/ddl"
	"csvetl/internal/storage"
	"csvetl/pkg/records"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	for kind, want := range map[string]string{
		"int":       "BIGINT",
		"bool":      "BIT",
		"date":      "DATE",
		"timestamp": "DATETIMEOFFSET",
		"float":     "FLOAT",
		"time":      "NVARCHAR(MAX)",
		"string":    "NVARCHAR(MAX)",
	} {
		assert.Equal(t, want, MapType(kind), kind)
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL(gddl.TableDef{
		FQN: "dbo.listings",
		Columns: []gddl.ColumnDef{
			{Name: "host_id", SQLType: "NVARCHAR(MAX)", PrimaryKey: true},
			{Name: "name]x", SQLType: "NVARCHAR(MAX)", Nullable: true},
			{Name: "reviews_missing", SQLType: "BIGINT", Default: "0"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"IF OBJECT_ID(N'[dbo].[listings]', N'U') IS NULL\nBEGIN\n"+
			"  CREATE TABLE [dbo].[listings] (\n"+
			"    [host_id] NVARCHAR(450) NOT NULL,\n"+
			"    [name]]x] NVARCHAR(MAX),\n"+
			"    [reviews_missing] BIGINT NOT NULL DEFAULT 0,\n"+
			"    PRIMARY KEY ([host_id])\n"+
			"  );\nEND;",
		got)

	_, err = BuildCreateTableSQL(gddl.TableDef{FQN: "t"})
	assert.ErrorContains(t, err, "mssql ddl: at least one column is required")
}

type execRepo struct {
	storage.Repository
	stmts []string
}

func (e *execRepo) Exec(_ context.Context, sql string) error {
	e.stmts = append(e.stmts, sql)
	return nil
}

func TestEnsureTable_Replace(t *testing.T) {
	t.Parallel()

	tbl := records.New("id")
	tbl.SetKind("id", records.KindInt)
	repo := &execRepo{}

	err := EnsureTable(context.Background(), repo, storage.TableSpec{Table: "listings", Source: tbl, Replace: true})
	require.NoError(t, err)
	require.Len(t, repo.stmts, 2)
	assert.Equal(t, "IF OBJECT_ID(N'[listings]', N'U') IS NOT NULL\n  DROP TABLE [listings];", repo.stmts[0])
	assert.Contains(t, repo.stmts[1], "CREATE TABLE [listings] (\n    [id] BIGINT\n  );")
}
