package models

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a field path such as "itinerary[0].hour" or
// "passengers[1].passportNumber" to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := fe.Paths()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Paths returns the failing paths in sorted order.
func (fe FieldErrors) Paths() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (fe FieldErrors) Has(path string) bool {
	_, ok := fe[path]
	return ok
}

// Merge copies other into fe. Existing entries win.
func (fe FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		if _, ok := fe[k]; !ok {
			fe[k] = v
		}
	}
}

func SegmentPath(index int, field string) string {
	return fmt.Sprintf("itinerary[%d].%s", index, field)
}

func PassengerPath(index int, field string) string {
	return fmt.Sprintf("passengers[%d].%s", index, field)
}
