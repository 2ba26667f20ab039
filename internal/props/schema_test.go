package props

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func fieldKeys(fs []Field) string {
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return strings.Join(keys, ",")
}

func TestFields(t *testing.T) {
	tests := map[string]struct {
		kind      Kind
		expKeys   string
		expLabel0 string
	}{
		"value":   {kind: KindValue, expKeys: "value", expLabel0: "Value"},
		"text":    {kind: KindText, expKeys: "text", expLabel0: "Text"},
		"code":    {kind: KindCode, expKeys: "text", expLabel0: "Code"},
		"move":    {kind: KindMove, expKeys: "loc,text,oleave,oarrive", expLabel0: "Destination"},
		"event":   {kind: KindEvent, expKeys: "text,otext", expLabel0: "(Message)"},
		"unknown": {kind: Kind("widget"), expKeys: "value", expLabel0: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fs := Fields(tt.kind)
			testutil.AssertEqual(t, "keys", fieldKeys(fs), tt.expKeys)
			testutil.AssertEqual(t, "first label", fs[0].Label, tt.expLabel0)
		})
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	fs := Fields(KindMove)
	fs[0].Label = "changed"
	testutil.AssertEqual(t, "label", Fields(KindMove)[0].Label, "Destination")
}

func TestFieldValues_MatchSchema(t *testing.T) {
	vals := []Value{
		Scalar{Value: "1"},
		Text{Text: "t"},
		Code{Text: "c"},
		Move{Loc: "l"},
		Event{Text: "e"},
		Unrecognized{Type: "widget"},
	}

	for _, v := range vals {
		fv := FieldValues(v)
		fs := Fields(RenderKind(v))
		testutil.AssertEqual(t, "field count", len(fv), len(fs))
		for _, f := range fs {
			if _, ok := fv[f.Key]; !ok {
				t.Errorf("%T: missing field %q", v, f.Key)
			}
		}
	}
}

func TestFieldValues_Unrecognized(t *testing.T) {
	fv := FieldValues(Unrecognized{})
	testutil.AssertEqual(t, "placeholder", fv["value"], Placeholder)
}

func TestFromFields(t *testing.T) {
	tests := map[string]struct {
		kind   Kind
		fields map[string]string
		exp    string
	}{
		"text trims": {
			kind:   KindText,
			fields: map[string]string{"text": "  hello \n"},
			exp:    `{"type":"text","text":"hello"}`,
		},
		"text empty omits field": {
			kind:   KindText,
			fields: map[string]string{"text": "   "},
			exp:    `{"type":"text"}`,
		},
		"code": {
			kind:   KindCode,
			fields: map[string]string{"text": "x"},
			exp:    `{"type":"code","text":"x"}`,
		},
		"value": {
			kind:   KindValue,
			fields: map[string]string{"value": " 5 "},
			exp:    `{"type":"value","value":"5"}`,
		},
		"move keeps all messages": {
			kind:   KindMove,
			fields: map[string]string{"loc": "hall", "text": "Go.", "oleave": "L", "oarrive": ""},
			exp:    `{"type":"move","text":"Go.","loc":"hall","oleave":"L"}`,
		},
		"event": {
			kind:   KindEvent,
			fields: map[string]string{"text": "a", "otext": "b"},
			exp:    `{"type":"event","text":"a","otext":"b"}`,
		},
		"ignores unknown fields": {
			kind:   KindText,
			fields: map[string]string{"text": "a", "bogus": "b"},
			exp:    `{"type":"text","text":"a"}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := EncodeValue(FromFields(tt.kind, tt.fields))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "json", string(got), tt.exp)
		})
	}
}

func TestEmpty(t *testing.T) {
	for _, k := range Kinds {
		v := Empty(k)
		testutil.AssertEqual(t, "kind", RenderKind(v), k)
		for key, content := range FieldValues(v) {
			testutil.AssertEqual(t, string(k)+"."+key, content, "")
		}
	}
}

func TestRecord_JSON(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"id":1,"key":"k1","val":{"type":"value","value":"5"}}`), &r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "id", r.ID, "1")
	testutil.AssertEqual(t, "key", r.Key, "k1")
	testutil.AssertEqual(t, "val", r.Val, Value(Scalar{Value: "5"}))

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "json", string(b), `{"id":"1","key":"k1","val":{"type":"value","value":"5"}}`)
}

func TestRecord_JSONMissingVal(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"id":"7","key":"desc"}`), &r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, known := KindOf(r.Val)
	testutil.AssertEqual(t, "known", known, false)
	testutil.AssertEqual(t, "render kind", RenderKind(r.Val), KindValue)
}

func TestRecord_Validate(t *testing.T) {
	tests := map[string]struct {
		rec    Record
		expErr string
	}{
		"valid": {
			rec: Record{ID: "1", Key: "desc", Val: Text{Text: "x"}},
		},
		"missing id": {
			rec:    Record{Key: "desc", Val: Text{}},
			expErr: "id must be set",
		},
		"bad key": {
			rec:    Record{ID: "1", Key: "no spaces", Val: Text{}},
			expErr: "must be an identifier",
		},
		"missing val": {
			rec:    Record{ID: "1", Key: "desc"},
			expErr: "val must be set",
		},
		"unrecognized val": {
			rec:    Record{ID: "1", Key: "desc", Val: Unrecognized{Type: "widget"}},
			expErr: "unrecognized type",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestParseTableKey(t *testing.T) {
	tests := map[string]struct {
		input  string
		exp    TableKey
		expErr string
	}{
		"location": {input: "hall", exp: LocationTable("hall")},
		"realm":    {input: "$realm", exp: RealmTable},
		"player":   {input: "$player", exp: PlayerTable},
		"empty":    {input: "", expErr: "must be set"},
		"bad mark": {input: "$world", expErr: "unknown table marker"},
		"bad loc":  {input: "a/b", expErr: "must be alphanumeric"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseTableKey(tt.input)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "key", got, tt.exp)
			testutil.AssertEqual(t, "round trip", got.String(), tt.input)
		})
	}
}
