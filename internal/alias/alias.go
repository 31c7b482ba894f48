// Package alias loads the curated search-term table (xlsx) that maps
// canonical names to synonyms and translations.
package alias

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Category selects one section of the search-term table. The values are
// the literal category cells of the source table.
type Category string

const (
	CategoryWater    Category = "Gewässer / Flüsse"
	CategoryBasin    Category = "Einzugsgebiete"
	CategoryDistrict Category = "Landkreis"
)

// Entry is one row of the table. Terms is matched as a case-insensitive
// substring key; row order from the source is significant and preserved.
type Entry struct {
	Category     Category
	Terms        string
	Synonyms     []string
	Translations []string
}

// Table is the loaded, read-only search-term list.
type Table struct {
	entries []Entry
}

// NewTable builds a table from already-parsed entries.
func NewTable(entries []Entry) *Table {
	return &Table{entries: entries}
}

// Load reads the xlsx reference table. Expected columns:
// Suchwortkategorie, Suchworte, Synonyme, Übersetzungen.
func Load(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening search term list %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return NewTable(nil), nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}

	var entries []Entry
	for _, row := range rows[1:] {
		entry := Entry{
			Category:     Category(cell(row, col, "Suchwortkategorie")),
			Terms:        cell(row, col, "Suchworte"),
			Synonyms:     splitList(cell(row, col, "Synonyme")),
			Translations: splitList(cell(row, col, "Übersetzungen")),
		}
		if entry.Category == "" && entry.Terms == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return NewTable(entries), nil
}

func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Alternatives returns the synonyms and translations of the first entry
// in the given category whose terms contain term (case-insensitive).
// District inputs are normalized first: the words "Landkreis"/"Kreis" are
// stripped. Returns nil when nothing matches or the matched entry has no
// names — never an empty non-nil slice.
func (t *Table) Alternatives(category Category, term string) []string {
	if category == CategoryDistrict {
		term = normalizeDistrict(term)
	}
	if term == "" {
		return nil
	}

	needle := strings.ToLower(term)
	for _, e := range t.entries {
		if e.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(e.Terms), needle) {
			continue
		}
		if len(e.Synonyms) == 0 && len(e.Translations) == 0 {
			return nil
		}
		out := make([]string, 0, len(e.Synonyms)+len(e.Translations))
		out = append(out, e.Synonyms...)
		out = append(out, e.Translations...)
		return out
	}
	return nil
}

func normalizeDistrict(s string) string {
	s = stripWord(s, "landkreis")
	s = stripWord(s, "kreis")
	return strings.TrimSpace(s)
}

// stripWord removes every case-insensitive occurrence of word from s.
func stripWord(s, word string) string {
	lower := strings.ToLower(s)
	for {
		i := strings.Index(lower, word)
		if i < 0 {
			return s
		}
		s = s[:i] + s[i+len(word):]
		lower = lower[:i] + lower[i+len(word):]
	}
}
