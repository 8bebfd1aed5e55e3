package core

import (
	"maps"
	"slices"
	"strings"
)

// FieldErrors maps form field names to a single human readable message.
// A FieldErrors value matches ErrValidation with errors.Is.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Err returns fe as an error, or nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := slices.Sorted(maps.Keys(fe))
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation.
func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}
