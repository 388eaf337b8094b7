// Package category normalizes free-text amenity categories into canonical
// names shared by every amenity provider.
package category

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is a canonical amenity category such as "restaurants".
type Category string

// Unrecognized is returned for input that no alias table entry matches.
const Unrecognized Category = ""

// Known reports whether c is a recognized category.
func (c Category) Known() bool { return c != Unrecognized }

func (c Category) String() string { return string(c) }

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize folds diacritics, lowercases, spells out "&", and collapses every
// run of other characters into a single underscore.
func Normalize(raw string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		folded = raw
	}
	s := strings.ReplaceAll(strings.ToLower(folded), "&", "and")
	return strings.Trim(nonAlnum.ReplaceAllString(s, "_"), "_")
}

// Table is an immutable alias table. Every canonical name is also an alias of
// itself.
type Table struct {
	aliases   map[string]Category
	reverse   map[Category][]string
	supported []string
}

// NewTable builds a table from canonical names and extra aliases. Alias keys
// are normalized on insert.
func NewTable(canonical []Category, aliases map[string]Category) *Table {
	t := &Table{
		aliases: make(map[string]Category, len(canonical)+len(aliases)),
		reverse: make(map[Category][]string, len(canonical)),
	}
	for _, c := range canonical {
		t.aliases[string(c)] = c
		t.supported = append(t.supported, string(c))
	}
	for alias, c := range aliases {
		t.aliases[Normalize(alias)] = c
	}
	for alias, c := range t.aliases {
		t.reverse[c] = append(t.reverse[c], alias)
	}
	for c := range t.reverse {
		sort.Strings(t.reverse[c])
	}
	sort.Strings(t.supported)
	return t
}

// Resolve maps free text to its canonical category, or Unrecognized.
func (t *Table) Resolve(raw string) Category {
	return t.aliases[Normalize(raw)]
}

// Aliases returns every normalized spelling that resolves to c, sorted.
func (t *Table) Aliases(c Category) []string {
	return append([]string(nil), t.reverse[c]...)
}

// Supported returns the sorted canonical names.
func (t *Table) Supported() []string {
	return append([]string(nil), t.supported...)
}

// Has reports whether c is one of the table's canonical names.
func (t *Table) Has(c Category) bool {
	_, ok := t.reverse[c]
	return ok && t.aliases[string(c)] == c
}

// Suggest returns the canonical names with an alias that contains, or is
// contained in, the normalized input. It backs "did you mean" hints for text
// Resolve rejects.
func (t *Table) Suggest(raw string) []string {
	n := Normalize(raw)
	if len(n) < 3 {
		return nil
	}
	var out []string
	for _, c := range t.supported {
		for _, alias := range t.Aliases(Category(c)) {
			if strings.Contains(n, alias) || strings.Contains(alias, n) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
