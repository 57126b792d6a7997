// Package parser defines the extraction parser contract.
package parser

import (
	"io"

	"csvetl/pkg/records"
)

// Parser turns the raw bytes of a source into a Record Table.
type Parser interface {
	Parse(r io.Reader) (*records.Table, error)
}
