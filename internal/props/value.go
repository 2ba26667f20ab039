package props

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the type tag carried by a property value.
type Kind string

const (
	KindValue Kind = "value"
	KindText  Kind = "text"
	KindCode  Kind = "code"
	KindMove  Kind = "move"
	KindEvent Kind = "event"
)

// Kinds lists the kinds a builder can pick, in selector order.
var Kinds = []Kind{KindText, KindCode, KindMove, KindEvent, KindValue}

func (k Kind) Valid() bool {
	switch k {
	case KindValue, KindText, KindCode, KindMove, KindEvent:
		return true
	}
	return false
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind := Kind(text)
	if !kind.Valid() {
		return fmt.Errorf("unknown value type: %s", text)
	}
	*k = kind
	return nil
}

// Value is a property payload. The set of implementations is closed.
type Value interface {
	isValue()
}

// Scalar is an opaque scalar value.
type Scalar struct {
	Value string
}

// Text is freeform text.
type Text struct {
	Text string
}

// Code is freeform text displayed as code.
type Code struct {
	Text string
}

// Move sends the player to another location.
type Move struct {
	Loc     string
	Text    string
	OLeave  string
	OArrive string
}

// Event prints a message to the player and to everyone else present.
type Event struct {
	Text  string
	OText string
}

// Unrecognized holds a payload whose type tag is absent or unknown.
type Unrecognized struct {
	Type string
	Raw  json.RawMessage
}

func (Scalar) isValue()       {}
func (Text) isValue()         {}
func (Code) isValue()         {}
func (Move) isValue()         {}
func (Event) isValue()        {}
func (Unrecognized) isValue() {}

// wireValue is the JSON object form shared by every kind.
type wireValue struct {
	Type    string          `json:"type,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Text    string          `json:"text,omitempty"`
	Loc     string          `json:"loc,omitempty"`
	OLeave  string          `json:"oleave,omitempty"`
	OArrive string          `json:"oarrive,omitempty"`
	OText   string          `json:"otext,omitempty"`
}

// DecodeValue parses a JSON value object. An absent or unknown type tag
// yields Unrecognized rather than an error.
func DecodeValue(data []byte) (Value, error) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}

	switch Kind(w.Type) {
	case KindValue:
		return Scalar{Value: scalarText(w.Value)}, nil
	case KindText:
		return Text{Text: w.Text}, nil
	case KindCode:
		return Code{Text: w.Text}, nil
	case KindMove:
		return Move{Loc: w.Loc, Text: w.Text, OLeave: w.OLeave, OArrive: w.OArrive}, nil
	case KindEvent:
		return Event{Text: w.Text, OText: w.OText}, nil
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return Unrecognized{Type: w.Type, Raw: raw}, nil
	}
}

// EncodeValue is the inverse of DecodeValue.
func EncodeValue(v Value) ([]byte, error) {
	var w wireValue
	switch tv := v.(type) {
	case Scalar:
		w.Type = string(KindValue)
		if tv.Value != "" {
			b, err := json.Marshal(tv.Value)
			if err != nil {
				return nil, err
			}
			w.Value = b
		}
	case Text:
		w.Type, w.Text = string(KindText), tv.Text
	case Code:
		w.Type, w.Text = string(KindCode), tv.Text
	case Move:
		w.Type = string(KindMove)
		w.Loc, w.Text, w.OLeave, w.OArrive = tv.Loc, tv.Text, tv.OLeave, tv.OArrive
	case Event:
		w.Type = string(KindEvent)
		w.Text, w.OText = tv.Text, tv.OText
	case Unrecognized:
		if len(tv.Raw) > 0 {
			return tv.Raw, nil
		}
		w.Type = tv.Type
	case nil:
		return nil, fmt.Errorf("encoding value: nil value")
	default:
		return nil, fmt.Errorf("encoding value: unsupported type %T", v)
	}

	return json.Marshal(w)
}

// scalarText returns the text of a JSON string, or the JSON itself for any
// other scalar.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
