package headercache

import (
	"fmt"
	"sort"
	"strings"
)

// Criterion is the bitmask of changes a client wants to be woken for.
type Criterion uint8

const (
	AnyAcquisition Criterion = 1 << iota
	RecordLengthChange
	VerticalSpacingChange
	HorizontalSpacingChange
)

var criterionNames = map[string]Criterion{
	"any_acquisition":           AnyAcquisition,
	"record_length_change":      RecordLengthChange,
	"vertical_spacing_change":   VerticalSpacingChange,
	"horizontal_spacing_change": HorizontalSpacingChange,
}

// ParseCriterion combines configuration names into a Criterion.
func ParseCriterion(names []string) (Criterion, error) {
	var c Criterion
	for _, n := range names {
		bit, ok := criterionNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown update criterion '%s'", n)
		}
		c |= bit
	}
	return c, nil
}

func (c Criterion) String() string {
	var parts []string
	for name, bit := range criterionNames {
		if c&bit != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// -----------------------------------------------------------------------------

// CriterionMet reports whether any symbol changed in a way mask asks for.
// AnyAcquisition wins outright, whatever other bits are set.
func (c *Cache) CriterionMet(mask Criterion, symbols []string) bool {
	if mask&AnyAcquisition != 0 {
		return true
	}
	for _, name := range symbols {
		d := c.Diff(name)
		if !d.Present {
			continue
		}
		if mask&RecordLengthChange != 0 && d.RecordLength {
			return true
		}
		if mask&VerticalSpacingChange != 0 && d.VerticalSpacing {
			return true
		}
		if mask&HorizontalSpacingChange != 0 && d.HorizontalSpacing {
			return true
		}
	}
	return false
}
