package entities

import "errors"

// Item-level extraction errors. Internal signals only: the parser drops the
// offending item instead of surfacing these to callers.
var (
	ErrItemMissingTitle = errors.New("action item missing title")
	ErrItemInvalidField = errors.New("action item field has wrong JSON type")
)
