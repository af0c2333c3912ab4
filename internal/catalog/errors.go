package catalog

import "errors"

var (
	// ErrEmptyCatalog is returned when a catalog source holds no items at all.
	ErrEmptyCatalog = errors.New("catalog contains no items")
	// ErrMalformedCatalog is returned when the source does not map category names to item lists
	// or an item carries an unusable material cost.
	ErrMalformedCatalog = errors.New("catalog is malformed")
	// ErrMissingID is returned when an item has an empty identifier.
	ErrMissingID = errors.New("catalog item is missing an id")
	// ErrDuplicateID is returned when two items share an identifier, in any category.
	ErrDuplicateID = errors.New("catalog item id is not unique")
)
