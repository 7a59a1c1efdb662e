package collision

import (
	"strconv"
	"strings"
)

// MaxTags is the number of distinct categories a TagSet can hold.
const MaxTags = 32

// TagSet is a bitmask of the categories an actor belongs to.
// Bit i set means membership in category i.
type TagSet uint32

// Tags builds a TagSet from category indices. Out-of-range indices are ignored.
func Tags(indices ...int) TagSet {
	var t TagSet
	for _, i := range indices {
		t.Set(i, true)
	}
	return t
}

// Get reports whether category i is set. Out-of-range indices read as false.
func (t TagSet) Get(i int) bool {
	if i < 0 || i >= MaxTags {
		return false
	}
	return t&(1<<uint(i)) != 0
}

// Set sets or clears category i. Out-of-range indices are ignored.
func (t *TagSet) Set(i int, on bool) {
	if i < 0 || i >= MaxTags {
		return
	}
	if on {
		*t |= 1 << uint(i)
	} else {
		*t &^= 1 << uint(i)
	}
}

// Compatible reports whether two sets share at least one category.
func Compatible(a, b TagSet) bool {
	return a&b != 0
}

// TagNames maps the 32 category indices to human-readable names.
// Only used for configuration and diagnostics.
type TagNames [MaxTags]string

// NewTagNames builds a table from an ordered list of names.
// Names beyond MaxTags are ignored.
func NewTagNames(names []string) TagNames {
	var n TagNames
	for i, name := range names {
		if i >= MaxTags {
			break
		}
		n[i] = strings.TrimSpace(name)
	}
	return n
}

// Index returns the category index for name.
func (n *TagNames) Index(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for i, s := range n {
		if s == name {
			return i, true
		}
	}
	return -1, false
}

// Mask builds a TagSet from category names; unknown names are skipped.
func (n *TagNames) Mask(names ...string) TagSet {
	var t TagSet
	for _, name := range names {
		if i, ok := n.Index(name); ok {
			t.Set(i, true)
		}
	}
	return t
}

// Describe lists the names of the categories set in t. Unnamed
// categories are reported as "#<index>".
func (n *TagNames) Describe(t TagSet) []string {
	var out []string
	for i := 0; i < MaxTags; i++ {
		if !t.Get(i) {
			continue
		}
		if n[i] != "" {
			out = append(out, n[i])
		} else {
			out = append(out, "#"+strconv.Itoa(i))
		}
	}
	return out
}
