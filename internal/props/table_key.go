package props

import (
	"fmt"
	"regexp"
	"strings"
)

var locationPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Scope is the unit a property table is attached to.
type Scope int

const (
	ScopeLocation Scope = iota
	ScopeRealm
	ScopePlayer
)

const (
	realmMarker  = "$realm"
	playerMarker = "$player"
)

func (s Scope) String() string {
	switch s {
	case ScopeLocation:
		return "location"
	case ScopeRealm:
		return "realm"
	case ScopePlayer:
		return "player"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// TableKey identifies one property table: a location, or the realm or
// player defaults.
type TableKey struct {
	Scope    Scope
	Location string
}

func LocationTable(loc string) TableKey {
	return TableKey{Scope: ScopeLocation, Location: loc}
}

var (
	RealmTable  = TableKey{Scope: ScopeRealm}
	PlayerTable = TableKey{Scope: ScopePlayer}
)

func (k TableKey) String() string {
	switch k.Scope {
	case ScopeRealm:
		return realmMarker
	case ScopePlayer:
		return playerMarker
	default:
		return k.Location
	}
}

// Slug is a form of the key safe for file names and NATS subjects.
func (k TableKey) Slug() string {
	switch k.Scope {
	case ScopeRealm:
		return "realm"
	case ScopePlayer:
		return "player"
	default:
		return "loc-" + k.Location
	}
}

// ParseTableKey is the inverse of TableKey.String.
func ParseTableKey(s string) (TableKey, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return TableKey{}, fmt.Errorf("table key must be set")
	case realmMarker:
		return RealmTable, nil
	case playerMarker:
		return PlayerTable, nil
	}
	if strings.HasPrefix(s, "$") {
		return TableKey{}, fmt.Errorf("unknown table marker %q", s)
	}
	if !locationPattern.MatchString(s) {
		return TableKey{}, fmt.Errorf("location %q must be alphanumeric", s)
	}
	return LocationTable(s), nil
}

func (k TableKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TableKey) UnmarshalText(text []byte) error {
	parsed, err := ParseTableKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
