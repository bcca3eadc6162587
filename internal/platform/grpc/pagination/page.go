// Package pagination normalizes list limits and order_by expressions.
package pagination

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/ordering"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig configures order_by validation.
type OrderByConfig struct {
	// Default is used when the request leaves order_by empty.
	Default string
	// Allowed lists the field paths callers may order by.
	Allowed []string
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// ParseOrderBy parses an AIP-132 order_by expression such as
// "start_date asc, title" and validates every field against cfg.Allowed.
func ParseOrderBy(orderBy string, cfg OrderByConfig) (ordering.OrderBy, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		orderBy = cfg.Default
	}
	var parsed ordering.OrderBy
	if err := parsed.UnmarshalString(orderBy); err != nil {
		return ordering.OrderBy{}, fmt.Errorf("invalid order_by: %w", err)
	}
	if err := parsed.ValidateForPaths(cfg.Allowed...); err != nil {
		return ordering.OrderBy{}, fmt.Errorf("invalid order_by: %w", err)
	}
	return parsed, nil
}
