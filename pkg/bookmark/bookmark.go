// Package bookmark defines the bookmark event value shared by the ingestion,
// storage, and messaging layers.
package bookmark

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxCategoryLength bounds the category label accepted at the ingestion boundary.
const MaxCategoryLength = 100

var categoryPattern = regexp.MustCompile(`^[a-zA-Z0-9 _/\-.]+$`)

// Bookmark is one bookmark-save event. Category is empty when the bookmark
// was saved without one. Values are copied into dispatch goroutines and read
// concurrently, so the struct stays immutable after creation.
type Bookmark struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// NormalizeCategory trims a raw category label and validates it against the
// accepted character set and length. An empty or absent category is valid and
// normalizes to "".
func NormalizeCategory(raw string) (string, error) {
	category := strings.TrimSpace(raw)
	if category == "" {
		return "", nil
	}
	if len(category) > MaxCategoryLength {
		return "", fmt.Errorf("category exceeds %d characters", MaxCategoryLength)
	}
	if !categoryPattern.MatchString(category) {
		return "", fmt.Errorf("category contains invalid characters")
	}
	return category, nil
}
