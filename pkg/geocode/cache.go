// Package geocode resolves free-text addresses to coordinates through a
// rate-limited Nominatim client fronted by an append-only on-disk cache.
package geocode

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Entry is one resolved address: the normalized query string and its
// coordinates.
type Entry struct {
	Query string  `json:"query"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Cache is the in-memory address cache, keyed by normalized query. Entries
// are only ever added, never evicted.
type Cache struct {
	entries map[string]Entry
}

// NormalizeQuery collapses internal whitespace runs to single spaces and
// trims; cache keys and lookup queries always pass through here first.
func NormalizeQuery(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]Entry{}}
}

// Load reads the cache from disk, trying the primary CSV file first and the
// JSON fallback next. A cache that does not exist yet is not an error. When a
// file exists but cannot be parsed, an empty cache is returned together with
// the parse error so callers can warn and continue.
func Load(path string) (*Cache, error) {
	c := NewCache()
	if strings.TrimSpace(path) == "" {
		return c, nil
	}

	if err := c.loadCSV(path); err == nil {
		return c, nil
	} else if !os.IsNotExist(err) {
		return NewCache(), err
	}

	if err := c.loadJSON(fallbackPath(path)); err != nil && !os.IsNotExist(err) {
		return NewCache(), err
	}
	return c, nil
}

// Save persists the cache, preferring CSV and falling back to JSON when the
// CSV write fails. It errors only when both formats fail.
func (c *Cache) Save(path string) error {
	if c == nil || strings.TrimSpace(path) == "" {
		return nil
	}
	csvErr := c.saveCSV(path)
	if csvErr == nil {
		return nil
	}
	if jsonErr := c.saveJSON(fallbackPath(path)); jsonErr != nil {
		return fmt.Errorf("cache save failed: csv: %v, json: %v", csvErr, jsonErr)
	}
	return nil
}

// Get looks up an address, normalizing it first.
func (c *Cache) Get(query string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.entries[NormalizeQuery(query)]
	return entry, ok
}

// Set stores a resolved address under its normalized form.
func (c *Cache) Set(query string, lat, lng float64) {
	if c == nil {
		return
	}
	if c.entries == nil {
		c.entries = map[string]Entry{}
	}
	key := NormalizeQuery(query)
	if key == "" {
		return
	}
	c.entries[key] = Entry{Query: key, Lat: lat, Lng: lng}
}

// Len reports the number of cached addresses.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// sortedEntries returns the entries ordered by query so saves are
// deterministic.
func (c *Cache) sortedEntries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Query < out[j].Query })
	return out
}

func (c *Cache) loadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for i, row := range rows {
		if i == 0 && row[0] == "query" {
			continue
		}
		lat, errLat := strconv.ParseFloat(row[1], 64)
		lng, errLng := strconv.ParseFloat(row[2], 64)
		if errLat != nil || errLng != nil {
			return fmt.Errorf("parse %s row %d: bad coordinates", path, i+1)
		}
		c.entries[row[0]] = Entry{Query: row[0], Lat: lat, Lng: lng}
	}
	return nil
}

func (c *Cache) saveCSV(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"query", "lat", "lng"}); err != nil {
		return err
	}
	for _, e := range c.sortedEntries() {
		row := []string{
			e.Query,
			strconv.FormatFloat(e.Lat, 'g', -1, 64),
			strconv.FormatFloat(e.Lng, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (c *Cache) loadJSON(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, e := range entries {
		c.entries[e.Query] = e
	}
	return nil
}

func (c *Cache) saveJSON(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	payload, err := json.Marshal(c.sortedEntries())
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(payload, '\n'), 0o644)
}

// fallbackPath swaps the file extension for .json.
func fallbackPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
