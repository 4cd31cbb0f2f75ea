package item

import "errors"

// ErrNotFound is returned when an id does not name an item in the registry.
var ErrNotFound = errors.New("item not found")
