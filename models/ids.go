package models

import "github.com/google/uuid"

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// IsValidID reports whether s parses as a UUID
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
