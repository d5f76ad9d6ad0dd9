package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"ecocoach/internal/model"

	"github.com/goccy/go-json"
)

var (
	ErrEmpty       = errors.New("catalog is empty")
	ErrDuplicateID = errors.New("duplicate challenge id")
	ErrInvalid     = errors.New("invalid challenge")
)

// Catalog is an ordered, read-only list of challenges.
type Catalog struct {
	entries []model.Challenge
	byID    map[int]model.Challenge
}

var defaultEntries = []model.Challenge{
	{ID: 1, Title: "Use Public Transport", Description: "Take the bus or train instead of driving", Points: 5, Category: model.CategoryTransport},
	{ID: 2, Title: "Plant a Tree", Description: "Plant a tree in your area", Points: 10, Category: model.CategoryNature},
	{ID: 3, Title: "Reduce Meat", Description: "Go vegetarian for one meal", Points: 3, Category: model.CategoryDiet},
	{ID: 4, Title: "Save Water", Description: "Take a shorter shower", Points: 2, Category: model.CategoryWater},
	{ID: 5, Title: "Use Reusable Bags", Description: "Shop with reusable bags", Points: 1, Category: model.CategoryWaste},
}

func Default() *Catalog {
	c, _ := New(defaultEntries)
	return c
}

func New(entries []model.Challenge) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	byID := make(map[int]model.Challenge, len(entries))
	for _, e := range entries {
		if e.ID <= 0 || e.Points < 0 || e.Title == "" {
			return nil, fmt.Errorf("%w: id %d", ErrInvalid, e.ID)
		}
		if _, err := model.ParseCategory(string(e.Category)); err != nil {
			return nil, fmt.Errorf("%w: id %d: %w", ErrInvalid, e.ID, err)
		}
		if _, ok := byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, e.ID)
		}
		byID[e.ID] = e
	}

	cp := make([]model.Challenge, len(entries))
	copy(cp, entries)

	return &Catalog{entries: cp, byID: byID}, nil
}

type fileEntry struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Points      int    `json:"points"`
}

// Load reads a JSON array of challenges. An empty path yields the default
// catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var raw []fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	entries := make([]model.Challenge, len(raw))
	for i, r := range raw {
		category, err := model.ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: id %d: %w", ErrInvalid, r.ID, err)
		}
		entries[i] = model.Challenge{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Category:    category,
			Points:      r.Points,
		}
	}

	return New(entries)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (c *Catalog) Entries() []model.Challenge {
	out := make([]model.Challenge, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) ByID(id int) (model.Challenge, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// IndexFor is ordinal(date) mod len(catalog).
func (c *Catalog) IndexFor(date time.Time) int {
	return int(model.Ordinal(date) % int64(len(c.entries)))
}

// Select deterministically picks the challenge for date.
func (c *Catalog) Select(date time.Time) model.Challenge {
	return c.entries[c.IndexFor(date)]
}
