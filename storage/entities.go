package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"intake/model"
)

// ErrEntityNotFound is returned when no stored entity has the requested id.
var ErrEntityNotFound = errors.New("entity not found")

// EntityStore keeps entities as JSON files under <dataDir>/entities/<type>/<id>.json.
type EntityStore struct {
	entitiesDir string
}

// NewEntityStore creates the entities directory if needed.
func NewEntityStore(dataDir string) (*EntityStore, error) {
	entitiesDir := filepath.Join(dataDir, "entities")

	// 0700 - recognized content may include contact details
	if err := os.MkdirAll(entitiesDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create entities directory: %w", err)
	}

	return &EntityStore{entitiesDir: entitiesDir}, nil
}

// Dir returns the root directory of the store.
func (s *EntityStore) Dir() string {
	return s.entitiesDir
}

// Save writes an entity, assigning an id and timestamps as needed. Changing
// an entity's type moves its file.
func (s *EntityStore) Save(e *model.Entity) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if err := validateID(e.ID); err != nil {
		return err
	}
	e.Type = SanitizeFilename(strings.ToLower(e.Type), "item")

	e.UpdatedAt = time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = e.UpdatedAt
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	dir := filepath.Join(s.entitiesDir, e.Type)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create entity type directory: %w", err)
	}

	if old, err := s.path(e.ID); err == nil && filepath.Dir(old) != dir {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("failed to move entity: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, e.ID+".json"), data, 0600); err != nil {
		return fmt.Errorf("failed to write entity file: %w", err)
	}
	return nil
}

// Load reads the entity with the given id.
func (s *EntityStore) Load(id string) (*model.Entity, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity file: %w", err)
	}

	var e model.Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return &e, nil
}

// List returns stored entities, newest first. A non-empty typ restricts the
// listing to that type. Unreadable files are skipped.
func (s *EntityStore) List(typ string) ([]model.Entity, error) {
	pattern := filepath.Join(s.entitiesDir, "*", "*.json")
	if typ != "" {
		pattern = filepath.Join(s.entitiesDir, SanitizeFilename(strings.ToLower(typ), "item"), "*.json")
	}

	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	entities := []model.Entity{}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var e model.Entity
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		entities = append(entities, e)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].UpdatedAt.After(entities[j].UpdatedAt)
	})
	return entities, nil
}

// Types returns the entity types present in the store.
func (s *EntityStore) Types() ([]string, error) {
	entries, err := os.ReadDir(s.entitiesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities directory: %w", err)
	}
	var types []string
	for _, entry := range entries {
		if entry.IsDir() {
			types = append(types, entry.Name())
		}
	}
	return types, nil
}

// Delete removes the entity with the given id.
func (s *EntityStore) Delete(id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

func (s *EntityStore) path(id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	matches, err := filepath.Glob(filepath.Join(s.entitiesDir, "*", id+".json"))
	if err != nil {
		return "", fmt.Errorf("failed to look up entity: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEntityNotFound, id)
	}
	return matches[0], nil
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\*?[]`) || id == "." || id == ".." {
		return fmt.Errorf("invalid entity id %q", id)
	}
	return nil
}

// SanitizeFilename replaces characters that are invalid in filenames and
// returns fallback when nothing usable remains.
func SanitizeFilename(name, fallback string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
		"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
	)
	name = strings.Trim(replacer.Replace(name), "-.")
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		return fallback
	}
	return name
}
