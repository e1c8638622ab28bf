package domain

import (
	"errors"
	"fmt"
)

// Product is a single catalog record shown to customers.
// IDs are assigned by the catalog repository and never change afterwards.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	PhotoRef    string `json:"photo" db:"photo_ref"`
}

// Field names a mutable Product attribute.
type Field string

const (
	// FieldName addresses the product title.
	FieldName Field = "name"
	// FieldDescription addresses the product description text.
	FieldDescription Field = "description"
)

// ErrProductNotFound is returned when an operation addresses a missing catalog id.
var ErrProductNotFound = errors.New("product not found")

// ErrUnknownField is returned when an update names an attribute that does not exist.
var ErrUnknownField = errors.New("unknown product field")

// ParseField validates a raw field name coming from a callback payload.
func ParseField(raw string) (Field, error) {
	switch Field(raw) {
	case FieldName:
		return FieldName, nil
	case FieldDescription:
		return FieldDescription, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
}
