package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/pixil98/go-mudbuild/internal/props"
)

var (
	ErrPropNotFound = errors.New("property not found")
	ErrKeyInUse     = errors.New("property key already in use")
)

// PropertyStore keeps every property table in memory and writes a table
// back to its JSON file whenever it changes.
type PropertyStore struct {
	path   string
	tables map[props.TableKey]*TableSpec
	owner  map[string]props.TableKey
	nextID int

	mu sync.RWMutex
}

func NewPropertyStore(path string) (*PropertyStore, error) {
	s := &PropertyStore{
		path:   path,
		tables: map[props.TableKey]*TableSpec{},
		owner:  map[string]props.TableKey{},
		nextID: 1,
	}

	err := s.load()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *PropertyStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		asset, err := loadAsset(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}

		err = asset.Validate()
		if err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(path), err)
		}

		key := asset.Spec.Table
		if _, ok := s.tables[key]; ok {
			return fmt.Errorf("duplicate table detected: %s", key.String())
		}

		for _, p := range asset.Spec.Props {
			if other, ok := s.owner[p.ID]; ok {
				return fmt.Errorf("property id %s used by both %s and %s", p.ID, other.String(), key.String())
			}
			s.owner[p.ID] = key
			if n, err := strconv.Atoi(p.ID); err == nil && n >= s.nextID {
				s.nextID = n + 1
			}
		}
		s.tables[key] = asset.Spec

		return nil
	})

	if err != nil {
		return err
	}

	slog.Info("loaded property tables", "path", s.path, "tables", len(s.tables), "props", len(s.owner))
	return nil
}

// Get returns a copy of a table's properties in display order.
func (s *PropertyStore) Get(key props.TableKey) []props.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.tables[key]
	if !ok {
		return []props.Record{}
	}
	return slices.Clone(spec.Props)
}

// Tables lists every table that holds at least one property.
func (s *PropertyStore) Tables() []props.TableKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]props.TableKey, 0, len(s.tables))
	for k := range s.tables {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b props.TableKey) int {
		if a.Scope != b.Scope {
			return int(a.Scope) - int(b.Scope)
		}
		if a.Location < b.Location {
			return -1
		}
		if a.Location > b.Location {
			return 1
		}
		return 0
	})
	return keys
}

// lookup finds a property by id.
func (s *PropertyStore) lookup(id string) (props.TableKey, props.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.owner[id]
	if !ok {
		return props.TableKey{}, props.Record{}, false
	}
	i := s.tables[key].index(id)
	return key, s.tables[key].Props[i], true
}

// Set replaces an existing property. The key may be renamed as long as it
// stays unique within the table.
func (s *PropertyStore) Set(rec props.Record) (props.TableKey, error) {
	if err := rec.Validate(); err != nil {
		return props.TableKey{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.owner[rec.ID]
	if !ok {
		return props.TableKey{}, fmt.Errorf("%w: %s", ErrPropNotFound, rec.ID)
	}
	spec := s.tables[key]
	if j := spec.keyIndex(rec.Key); j >= 0 && spec.Props[j].ID != rec.ID {
		return props.TableKey{}, fmt.Errorf("%w: %s", ErrKeyInUse, rec.Key)
	}

	i := spec.index(rec.ID)
	prev := spec.Props[i]
	spec.Props[i] = rec

	if err := s.write(spec); err != nil {
		spec.Props[i] = prev
		return props.TableKey{}, err
	}
	return key, nil
}

// Add appends a new property to a table, assigning it the next id.
func (s *PropertyStore) Add(key props.TableKey, name string, val props.Value) (props.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := props.Record{ID: strconv.Itoa(s.nextID), Key: name, Val: val}
	if err := rec.Validate(); err != nil {
		return props.Record{}, err
	}

	spec, ok := s.tables[key]
	if !ok {
		spec = &TableSpec{Table: key}
	}
	if spec.keyIndex(name) >= 0 {
		return props.Record{}, fmt.Errorf("%w: %s", ErrKeyInUse, name)
	}

	spec.Props = append(spec.Props, rec)
	if err := s.write(spec); err != nil {
		spec.Props = spec.Props[:len(spec.Props)-1]
		return props.Record{}, err
	}

	s.tables[key] = spec
	s.owner[rec.ID] = key
	s.nextID++
	return rec, nil
}

func (s *PropertyStore) write(spec *TableSpec) error {
	asset := &Asset{
		Version:    assetVersion,
		Identifier: spec.Table.Slug(),
		Spec:       spec,
	}

	jsonData, err := json.MarshalIndent(asset, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	return atomicWrite(s.filePath(asset.Identifier), jsonData, 0644)
}

// atomicWrite writes data to a temp file then renames it over path so a
// crash never leaves a truncated table behind.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (s *PropertyStore) filePath(id string) string {
	return filepath.Join(s.path, fmt.Sprintf("%s.json", id))
}

func loadAsset(path string) (*Asset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	jsonData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	asset := &Asset{}
	err = json.Unmarshal(jsonData, asset)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}

	return asset, nil
}

func (t *TableSpec) index(id string) int {
	return slices.IndexFunc(t.Props, func(p props.Record) bool { return p.ID == id })
}

func (t *TableSpec) keyIndex(key string) int {
	return slices.IndexFunc(t.Props, func(p props.Record) bool { return p.Key == key })
}
