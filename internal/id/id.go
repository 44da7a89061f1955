// Package id generates identifiers used to correlate crawl events across
// concurrent runs of the same process.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates UUIDv7 run identifiers. UUIDv7 is time-ordered, so
// run IDs sort the way the crawls that produced them were started.
type Generator struct{}

// NewGenerator constructs a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// NewID returns a new UUIDv7 string.
func (Generator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return v.String(), nil
}
