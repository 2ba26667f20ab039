package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-mudbuild/internal/props"
	"github.com/pixil98/go-testutil"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

const hallAsset = `{
  "version": 1,
  "id": "loc-hall",
  "spec": {
    "table": "hall",
    "props": [
      {"id": "3", "key": "desc", "val": {"type": "text", "text": "A long hall."}},
      {"id": 7, "key": "north", "val": {"type": "move", "loc": "yard"}}
    ]
  }
}`

func TestNewPropertyStore_Empty(t *testing.T) {
	store, err := NewPropertyStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "tables", len(store.Tables()), 0)
	testutil.AssertEqual(t, "next id", store.nextID, 1)
	testutil.AssertEqual(t, "get unknown", len(store.Get(props.RealmTable)), 0)
}

func TestNewPropertyStore_NonExistentDirectory(t *testing.T) {
	_, err := NewPropertyStore("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestNewPropertyStore_LoadsAssets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loc-hall.json", hallAsset)
	writeFile(t, dir, "readme.txt", "ignore me")

	store, err := NewPropertyStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hall := props.LocationTable("hall")
	recs := store.Get(hall)
	testutil.AssertEqual(t, "prop count", len(recs), 2)
	testutil.AssertEqual(t, "first key", recs[0].Key, "desc")
	testutil.AssertEqual(t, "numeric id", recs[1].ID, "7")
	testutil.AssertEqual(t, "next id", store.nextID, 8)

	key, rec, ok := store.lookup("7")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "owner", key, hall)
	testutil.AssertEqual(t, "val", rec.Val, props.Value(props.Move{Loc: "yard"}))
}

func TestNewPropertyStore_InvalidAssets(t *testing.T) {
	tests := map[string]struct {
		files  map[string]string
		expErr string
	}{
		"invalid json": {
			files:  map[string]string{"bad.json": `{invalid json`},
			expErr: "unmarshalling asset",
		},
		"missing version": {
			files:  map[string]string{"realm.json": `{"id":"realm","spec":{"table":"$realm","props":[]}}`},
			expErr: "version must be set",
		},
		"id mismatch": {
			files:  map[string]string{"realm.json": `{"version":1,"id":"player","spec":{"table":"$realm","props":[]}}`},
			expErr: "does not match table",
		},
		"duplicate key": {
			files: map[string]string{"realm.json": `{"version":1,"id":"realm","spec":{"table":"$realm","props":[
				{"id":"1","key":"a","val":{"type":"text"}},
				{"id":"2","key":"a","val":{"type":"text"}}]}}`},
			expErr: "duplicate key",
		},
		"id shared across tables": {
			files: map[string]string{
				"realm.json":  `{"version":1,"id":"realm","spec":{"table":"$realm","props":[{"id":"1","key":"a","val":{"type":"text"}}]}}`,
				"player.json": `{"version":1,"id":"player","spec":{"table":"$player","props":[{"id":"1","key":"b","val":{"type":"text"}}]}}`,
			},
			expErr: "property id 1 used by both",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			for n, c := range tt.files {
				writeFile(t, dir, n, c)
			}
			_, err := NewPropertyStore(dir)
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestPropertyStore_Set(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loc-hall.json", hallAsset)
	store, err := NewPropertyStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		rec    props.Record
		expErr error
		expMsg string
	}{
		"update value": {
			rec: props.Record{ID: "3", Key: "desc", Val: props.Text{Text: "A short hall."}},
		},
		"rename key": {
			rec: props.Record{ID: "7", Key: "out", Val: props.Move{Loc: "yard"}},
		},
		"unknown id": {
			rec:    props.Record{ID: "99", Key: "x", Val: props.Text{}},
			expErr: ErrPropNotFound,
		},
		"key collision": {
			rec:    props.Record{ID: "3", Key: "out", Val: props.Text{}},
			expErr: ErrKeyInUse,
		},
		"invalid record": {
			rec:    props.Record{ID: "3", Key: "bad key", Val: props.Text{}},
			expMsg: "must be an identifier",
		},
	}

	// Order matters: "key collision" relies on "rename key".
	for _, name := range []string{"update value", "rename key", "unknown id", "key collision", "invalid record"} {
		tt := tests[name]
		t.Run(name, func(t *testing.T) {
			key, err := store.Set(tt.rec)
			switch {
			case tt.expErr != nil:
				if !errors.Is(err, tt.expErr) {
					t.Errorf("expected %v, got %v", tt.expErr, err)
				}
			case tt.expMsg != "":
				testutil.AssertErrorContains(t, err, tt.expMsg)
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				testutil.AssertEqual(t, "table", key, props.LocationTable("hall"))
			}
		})
	}

	// Changes survive a reload.
	reloaded, err := NewPropertyStore(dir)
	if err != nil {
		t.Fatalf("unexpected error reloading: %v", err)
	}
	recs := reloaded.Get(props.LocationTable("hall"))
	testutil.AssertEqual(t, "prop count", len(recs), 2)
	testutil.AssertEqual(t, "desc", recs[0].Val, props.Value(props.Text{Text: "A short hall."}))
	testutil.AssertEqual(t, "renamed", recs[1].Key, "out")

	if _, err := os.Stat(filepath.Join(dir, "loc-hall.json.tmp")); !os.IsNotExist(err) {
		t.Error("expected temp file to be gone")
	}
}

func TestPropertyStore_Add(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPropertyStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := store.Add(props.RealmTable, "greeting", props.Text{Text: "Welcome."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.Add(props.PlayerTable, "score", props.Scalar{Value: "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "first id", first.ID, "1")
	testutil.AssertEqual(t, "second id", second.ID, "2")

	_, err = store.Add(props.RealmTable, "greeting", props.Text{})
	if !errors.Is(err, ErrKeyInUse) {
		t.Errorf("expected ErrKeyInUse, got %v", err)
	}

	_, err = store.Add(props.RealmTable, "", props.Text{})
	testutil.AssertErrorContains(t, err, "key must be set")

	tables := store.Tables()
	testutil.AssertEqual(t, "table count", len(tables), 2)
	testutil.AssertEqual(t, "realm first", tables[0], props.RealmTable)
	testutil.AssertEqual(t, "player second", tables[1], props.PlayerTable)

	if _, err := os.Stat(filepath.Join(dir, "realm.json")); err != nil {
		t.Errorf("expected realm.json to be written: %v", err)
	}

	reloaded, err := NewPropertyStore(dir)
	if err != nil {
		t.Fatalf("unexpected error reloading: %v", err)
	}
	testutil.AssertEqual(t, "next id after reload", reloaded.nextID, 3)
}
