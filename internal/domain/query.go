package domain

import "strings"

// TimeRange restricts a query to a window of the video timeline, in seconds.
type TimeRange struct {
	From float64
	To   float64
}

// Overlaps reports whether the unit's span intersects the range. Units wholly
// outside the range are excluded from retrieval, not merely down-weighted.
func (r TimeRange) Overlaps(u TextUnit) bool {
	return u.End >= r.From && u.Start <= r.To
}

// Query is a user question against one video's corpus. Queries are transient
// and never persisted.
type Query struct {
	Text      string
	TimeRange *TimeRange
	TopK      int // 0 means the configured default
}

// ValidateQuery validates a Query instance
func ValidateQuery(q *Query) error {
	if q == nil || strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuestion
	}
	if q.TimeRange != nil && q.TimeRange.To < q.TimeRange.From {
		return ErrInvalidTimeRange
	}
	if q.TopK < 0 {
		return NewDomainError(ErrCodeValidation, "top_k cannot be negative")
	}
	return nil
}
