package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pixil98/go-mudbuild/internal/props"
	"github.com/pixil98/go-testutil"
)

func TestWrap(t *testing.T) {
	tests := map[string]struct {
		text  string
		width int
		exp   string
	}{
		"fits":          {text: "short line", width: 20, exp: "short line"},
		"wraps":         {text: "one two three", width: 8, exp: "one two\nthree"},
		"default width": {text: "a b", width: 0, exp: "a b"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "wrapped", Wrap(tt.text, tt.width), tt.exp)
		})
	}
}

func TestBlock(t *testing.T) {
	got := Block("alpha beta gamma delta\n", 16, 4)
	testutil.AssertEqual(t, "block", got, "    alpha beta\n    gamma delta")
}

func TestDump(t *testing.T) {
	tables := []DumpTable{
		{
			Key: props.LocationTable("hall"),
			Props: []props.Record{
				{ID: "3", Key: "desc", Val: props.Text{Text: "A long hall."}},
				{ID: "7", Key: "north", Val: props.Move{Loc: "yard", Text: "You go."}},
				{ID: "8", Key: "x", Val: props.Unrecognized{Type: "widget"}},
			},
		},
		{Key: props.RealmTable},
	}

	var buf bytes.Buffer
	if err := Dump(&buf, tables, 80); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := strings.Join([]string{
		"== LOCATION HALL ==",
		"[3] desc (text)",
		"    Text: A long hall.",
		"[7] north (move)",
		"    Destination: yard",
		"    (Move message): You go.",
		"[8] x (unrecognized)",
		"    ???",
		"",
		"== REALM DEFAULTS ==",
		"    (no properties)",
		"",
	}, "\n")
	testutil.AssertEqual(t, "dump", buf.String(), exp)
}
