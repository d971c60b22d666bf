package filter

import (
	"fmt"
	"time"
)

// MaxConditions is the maximum number of conditions per expression.
const MaxConditions = 32

// Expression is a conjunction of facet conditions.
type Expression struct {
	conditions []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(conditions ...Condition) (Expression, error) {
	if len(conditions) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	out := make([]Condition, len(conditions))
	copy(out, conditions)
	return Expression{conditions: out}, nil
}

// Conditions returns the conditions, all of which must match.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Condition is a single filter clause: either a terms match or a set of date ranges.
// Date ranges within one condition are alternatives.
type Condition struct {
	key    string
	terms  []string
	ranges []DateRange
}

// NewTerms creates a condition matching any of the exact values.
func NewTerms(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty value for key %q", key)
		}
	}
	return Condition{key: key, terms: append([]string(nil), values...)}, nil
}

// NewDateRanges creates a condition matching a date in any of the ranges.
func NewDateRanges(key string, ranges ...DateRange) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(ranges) == 0 {
		return Condition{}, fmt.Errorf("at least one date range is required for key %q", key)
	}
	return Condition{key: key, ranges: append([]DateRange(nil), ranges...)}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Terms returns the accepted values of a terms condition.
func (c Condition) Terms() []string { return c.terms }

// DateRanges returns the ranges of a date condition.
func (c Condition) DateRanges() []DateRange { return c.ranges }

// IsTerms reports whether this is a terms condition.
func (c Condition) IsTerms() bool { return len(c.terms) > 0 }

// IsDateRange reports whether this is a date range condition.
func (c Condition) IsDateRange() bool { return len(c.ranges) > 0 }

// DateRange is a half-open interval [from, to). Either bound may be open.
type DateRange struct {
	from *time.Time
	to   *time.Time
}

// NewDateRange validates and creates a DateRange.
// At least one boundary required; from must not be after to.
func NewDateRange(from, to *time.Time) (DateRange, error) {
	if from == nil && to == nil {
		return DateRange{}, fmt.Errorf("at least one range boundary is required")
	}
	if from != nil && to != nil && from.After(*to) {
		return DateRange{}, fmt.Errorf("range start %s is after end %s",
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return DateRange{from: from, to: to}, nil
}

// From returns the inclusive lower bound.
func (r DateRange) From() *time.Time { return r.from }

// To returns the exclusive upper bound.
func (r DateRange) To() *time.Time { return r.to }
