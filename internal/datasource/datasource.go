// Package datasource abstracts where the input bytes of a run come from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw input of a run. Callers close the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in logs and error messages.
	Name() string
}
