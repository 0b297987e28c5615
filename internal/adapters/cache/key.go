package cache

import (
	"github.com/openlift/ironstats/internal/domain/model"
)

// Format discriminators appended to every key, so two different wire
// encodings of the same logical query never collide.
const (
	FormatJSON  = "json"
	FormatArrow = "arrow"
)

// Key derives the canonical cache key for an operation over a filter
// request, serialized in the named format.
func Key(op string, req model.FilterRequest, format string) string {
	return op + "|" + req.Canonical() + "|fmt=" + format
}
