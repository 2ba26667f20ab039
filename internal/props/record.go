package props

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pixil98/go-errors"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Record is a property as exchanged with the server.
type Record struct {
	ID  string
	Key string
	Val Value
}

type wireRecord struct {
	ID  json.RawMessage `json:"id"`
	Key string          `json:"key"`
	Val json.RawMessage `json:"val"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}

	w := wireRecord{ID: id, Key: r.Key}
	if r.Val != nil {
		w.Val, err = EncodeValue(r.Val)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", r.ID, err)
		}
	}
	return json.Marshal(w)
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	id, err := decodeID(w.ID)
	if err != nil {
		return err
	}

	val := Value(Unrecognized{})
	if len(w.Val) > 0 && !bytes.Equal(bytes.TrimSpace(w.Val), []byte("null")) {
		val, err = DecodeValue(w.Val)
		if err != nil {
			return fmt.Errorf("property %s: %w", id, err)
		}
	}

	*r = Record{ID: id, Key: w.Key, Val: val}
	return nil
}

// decodeID accepts either a JSON string or a JSON number.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("property id must be a string or number: %s", raw)
	}
	return n.String(), nil
}

// Validate reports problems that would stop the record from being stored.
func (r Record) Validate() error {
	el := errors.NewErrorList()

	if strings.TrimSpace(r.ID) == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	el.Add(ValidateKey(r.Key))

	if r.Val == nil {
		el.Add(fmt.Errorf("val must be set"))
	} else if _, ok := KindOf(r.Val); !ok {
		el.Add(fmt.Errorf("val has unrecognized type"))
	}

	return el.Err()
}

// ValidateKey checks a property key name.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key must be set")
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("key %q must be an identifier", key)
	}
	return nil
}
