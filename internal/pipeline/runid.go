package pipeline

import "github.com/google/uuid"

// RunIDGenerator generates unique run identifiers for log correlation.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 run IDs, so run IDs
// sort chronologically in logs and reports.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator always returns the same ID. For deterministic tests.
type FixedGenerator struct {
	ID string
}

func (g FixedGenerator) Generate() string {
	return g.ID
}
