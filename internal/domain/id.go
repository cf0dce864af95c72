package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string for application-owned entities.
// UUIDv7 is time-ordered, so lexicographic order follows creation order,
// which makes it usable as a chain tie-breaker within a timestamp.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
