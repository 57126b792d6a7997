package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvetl/internal/config"
)

// fakeRepo records every call; it stands in for a backend in registry and
// Load tests.
type fakeRepo struct {
	execs      []string
	events     []string
	tables     []string
	batches    [][][]any
	columns    []string
	committed  bool
	closed     int
	copyErr    error
	commitErr  error
	shortCount bool
}

func (f *fakeRepo) Exec(_ context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	f.events = append(f.events, "exec "+sql)
	return nil
}

func (f *fakeRepo) CopyFrom(_ context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.events = append(f.events, "copy "+table)
	f.tables = append(f.tables, table)
	f.columns = columns
	f.batches = append(f.batches, rows)
	if f.shortCount {
		return int64(len(rows)) - 1, nil
	}
	return int64(len(rows)), nil
}

func (f *fakeRepo) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeRepo) Close() error { f.closed++; return nil }

func TestRegistry(t *testing.T) {
	repo := &fakeRepo{}
	var got Config
	Register("fake-registry", func(_ context.Context, cfg Config) (Repository, error) {
		got = cfg
		return repo, nil
	})

	r, err := New(context.Background(), Config{Kind: "fake-registry", Database: config.Database{Host: "db"}})
	require.NoError(t, err)
	assert.Same(t, repo, r)
	assert.Equal(t, "db", got.Database.Host)
	assert.Contains(t, Kinds(), "fake-registry")

	_, err = New(context.Background(), Config{Kind: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no backend registered for "nope"`)
}

func TestRegistry_FactoryError(t *testing.T) {
	boom := errors.New("dial failed")
	Register("fake-failing", func(context.Context, Config) (Repository, error) {
		return nil, boom
	})

	_, err := New(context.Background(), Config{Kind: "fake-failing"})
	assert.ErrorIs(t, err, boom)
}

func TestEnsureTable_Unregistered(t *testing.T) {
	t.Parallel()

	err := EnsureTable(context.Background(), "unregistered", &fakeRepo{}, TableSpec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no DDL bootstrapper registered for kind "unregistered"`)
}
