package props

import "strings"

// Placeholder is shown in place of a value whose type is not recognized.
const Placeholder = "???"

// Field describes one editable sub-field of a value cell.
type Field struct {
	Key   string
	Label string
}

var schema = map[Kind][]Field{
	KindValue: {{Key: "value", Label: "Value"}},
	KindText:  {{Key: "text", Label: "Text"}},
	KindCode:  {{Key: "text", Label: "Code"}},
	KindMove: {
		{Key: "loc", Label: "Destination"},
		{Key: "text", Label: "(Move message)"},
		{Key: "oleave", Label: "[$name] leaves."},
		{Key: "oarrive", Label: "[$name] arrives."},
	},
	KindEvent: {
		{Key: "text", Label: "(Message)"},
		{Key: "otext", Label: "(Message to other players)"},
	},
}

var placeholderFields = []Field{{Key: "value"}}

// Fields returns the sub-fields a value cell of the given kind is made of.
// Unknown kinds get the unlabeled placeholder field.
func Fields(k Kind) []Field {
	fs, ok := schema[k]
	if !ok {
		fs = placeholderFields
	}
	out := make([]Field, len(fs))
	copy(out, fs)
	return out
}

// KindOf returns the type tag of v. The second result is false for
// Unrecognized values.
func KindOf(v Value) (Kind, bool) {
	switch v.(type) {
	case Scalar:
		return KindValue, true
	case Text:
		return KindText, true
	case Code:
		return KindCode, true
	case Move:
		return KindMove, true
	case Event:
		return KindEvent, true
	default:
		return KindValue, false
	}
}

// RenderKind is the kind v is displayed as. Unrecognized values render as
// a placeholder scalar.
func RenderKind(v Value) Kind {
	k, _ := KindOf(v)
	return k
}

// FieldValues maps each sub-field key of v's render kind to its content.
func FieldValues(v Value) map[string]string {
	switch tv := v.(type) {
	case Scalar:
		return map[string]string{"value": tv.Value}
	case Text:
		return map[string]string{"text": tv.Text}
	case Code:
		return map[string]string{"text": tv.Text}
	case Move:
		return map[string]string{
			"loc":     tv.Loc,
			"text":    tv.Text,
			"oleave":  tv.OLeave,
			"oarrive": tv.OArrive,
		}
	case Event:
		return map[string]string{"text": tv.Text, "otext": tv.OText}
	default:
		return map[string]string{"value": Placeholder}
	}
}

// FromFields builds a value of kind k from edited sub-field contents.
// Contents are trimmed; empty contents leave the field unset.
func FromFields(k Kind, fields map[string]string) Value {
	get := func(key string) string {
		return strings.TrimSpace(fields[key])
	}

	switch k {
	case KindText:
		return Text{Text: get("text")}
	case KindCode:
		return Code{Text: get("text")}
	case KindMove:
		return Move{Loc: get("loc"), Text: get("text"), OLeave: get("oleave"), OArrive: get("oarrive")}
	case KindEvent:
		return Event{Text: get("text"), OText: get("otext")}
	default:
		return Scalar{Value: get("value")}
	}
}

// Empty returns a value of kind k with every field unset.
func Empty(k Kind) Value {
	return FromFields(k, nil)
}
