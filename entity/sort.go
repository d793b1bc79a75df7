package entity

import (
	"fmt"
	"strings"
)

// SortKey orders records by a single field.
type SortKey struct {
	Field int  // Field index, 0 through 5
	Desc  bool // Sort descending if true, ascending if false
}

// SortSpec chains sort keys, most significant first.
type SortSpec []SortKey

// String renders the spec in its option encoding, "+2,-0".
func (spec SortSpec) String() string {

	tokens := make([]string, len(spec))
	for i, key := range spec {
		sign := "+"
		if key.Desc {
			sign = "-"
		}
		tokens[i] = fmt.Sprintf("%s%d", sign, key.Field)
	}
	return strings.Join(tokens, ",")
}

// Toggle cycles field through none, ascending and descending.
// A key left in the spec becomes its most significant.
func (spec SortSpec) Toggle(field int) (toggled SortSpec) {

	toggled = SortSpec{}
	current := -1
	for i, key := range spec {
		if key.Field == field {
			current = i
			continue
		}
		toggled = append(toggled, key)
	}

	switch {
	case current < 0:
		toggled = append(SortSpec{{Field: field}}, toggled...)
	case !spec[current].Desc:
		toggled = append(SortSpec{{Field: field, Desc: true}}, toggled...)
	}
	return
}
