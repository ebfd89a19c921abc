package storage

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"intake/model"
)

// EntityMatch is one search hit.
type EntityMatch struct {
	Entity  model.Entity
	Preview string
	Score   int
}

// SearchIndex fuzzy-matches a query against stored entities.
type SearchIndex struct {
	store *EntityStore
}

func NewSearchIndex(store *EntityStore) *SearchIndex {
	return &SearchIndex{store: store}
}

// Search ranks entities of the given type (all types when empty) by fuzzy
// match of query against name, keywords and description.
func (si *SearchIndex) Search(query, typ string) ([]EntityMatch, error) {
	if strings.TrimSpace(query) == "" {
		return []EntityMatch{}, nil
	}

	entities, err := si.store.List(typ)
	if err != nil {
		return nil, err
	}
	return SearchEntities(entities, query), nil
}

// SearchEntities fuzzy-matches query against in-memory entities, best
// match first.
func SearchEntities(entities []model.Entity, query string) []EntityMatch {
	if strings.TrimSpace(query) == "" {
		return []EntityMatch{}
	}

	targets := make([]string, len(entities))
	for i, e := range entities {
		targets[i] = searchText(e)
	}

	matches := []EntityMatch{}
	for _, m := range fuzzy.Find(query, targets) {
		e := entities[m.Index]
		matches = append(matches, EntityMatch{
			Entity:  e,
			Preview: preview(e.Description, 100),
			Score:   m.Score,
		})
	}
	return matches
}

func searchText(e model.Entity) string {
	parts := []string{e.Name}
	parts = append(parts, e.Keywords...)
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	return strings.Join(parts, " ")
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
