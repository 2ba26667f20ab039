package storage

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudbuild/internal/props"
)

const assetVersion = 1

// Asset is the on-disk form of one property table.
type Asset struct {
	Version    uint       `json:"version"`
	Identifier string     `json:"id"`
	Spec       *TableSpec `json:"spec"`
}

func (a *Asset) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	if a.Spec == nil {
		el.Add(fmt.Errorf("spec must be set"))
		return el.Err()
	}

	if a.Identifier != "" && a.Identifier != a.Spec.Table.Slug() {
		el.Add(fmt.Errorf("id %q does not match table %q", a.Identifier, a.Spec.Table.String()))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}

// TableSpec is the ordered property list of a table.
type TableSpec struct {
	Table props.TableKey `json:"table"`
	Props []props.Record `json:"props"`
}

func (s *TableSpec) Validate() error {
	el := errors.NewErrorList()

	ids := map[string]bool{}
	keys := map[string]bool{}
	for i, p := range s.Props {
		if err := p.Validate(); err != nil {
			el.Add(fmt.Errorf("prop %d: %w", i, err))
			continue
		}
		if ids[p.ID] {
			el.Add(fmt.Errorf("prop %d: duplicate id %s", i, p.ID))
		}
		if keys[p.Key] {
			el.Add(fmt.Errorf("prop %d: duplicate key %s", i, p.Key))
		}
		ids[p.ID] = true
		keys[p.Key] = true
	}

	return el.Err()
}
