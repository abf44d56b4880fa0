// Package utils provides small helpers shared across modules:
// identifiers, search text normalization and file writes.
package utils

import "github.com/google/uuid"

// GenerateUUID returns a random version 4 uuid in its canonical form
func GenerateUUID() string {
	return uuid.NewString()
}

// IsValidUUID reports whether s parses as a uuid. Lookups by user_uuid
// use it to skip the database for values that cannot match a row.
func IsValidUUID(s string) bool {
	return uuid.Validate(s) == nil
}
