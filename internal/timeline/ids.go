package timeline

import "github.com/google/uuid"

// IDGenerator hands out identifiers that are unique for the lifetime of a
// project, including ids for clips produced by a razor cut.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }
