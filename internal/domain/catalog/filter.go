package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of a product listing
type SortKey string

const (
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

// AllCategories is the category selection that matches every product
const AllCategories = "all"

// ParseSortKey returns the sort key for s, defaulting to name-asc
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return k
	}
	return SortNameAsc
}

// Filter holds the catalog browsing criteria
type Filter struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortKey
}

// IsActive reports whether any criterion differs from the defaults
func (f Filter) IsActive() bool {
	return strings.TrimSpace(f.Search) != "" ||
		!isAllCategories(f.Category) ||
		f.MinPrice != nil ||
		f.MaxPrice != nil ||
		ParseSortKey(string(f.Sort)) != SortNameAsc
}

// Matches reports whether p satisfies every predicate of the filter
func (f Filter) Matches(p Product) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if !isAllCategories(f.Category) && p.CategoryName() != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// Apply returns the products matching f in the order selected by f.Sort.
// The input slice is not modified.
func Apply(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	col := collate.New(language.English)
	byName := func(a, b Product) int {
		return col.CompareString(a.Name, b.Name)
	}

	var cmpFn func(a, b Product) int
	switch ParseSortKey(string(f.Sort)) {
	case SortNameDesc:
		cmpFn = func(a, b Product) int { return byName(b, a) }
	case SortPriceAsc:
		cmpFn = func(a, b Product) int {
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c
			}
			return byName(a, b)
		}
	case SortPriceDesc:
		cmpFn = func(a, b Product) int {
			if c := b.Price.Cmp(a.Price); c != 0 {
				return c
			}
			return byName(a, b)
		}
	default:
		cmpFn = byName
	}

	// ID breaks remaining ties so the order is total
	slices.SortStableFunc(out, func(a, b Product) int {
		if c := cmpFn(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// CountByCategory returns how many products belong to the named category
func CountByCategory(products []Product, name string) int {
	n := 0
	for _, p := range products {
		if p.CategoryName() == name {
			n++
		}
	}
	return n
}

func isAllCategories(c string) bool {
	c = strings.TrimSpace(c)
	return c == "" || strings.EqualFold(c, AllCategories)
}
