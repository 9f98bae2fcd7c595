package record

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDecodeFileSingleObject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "abc-hello.json", `{"id":"abc","name":"Hello","nodes":[]}`)

	f, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if f.Shape != ShapeSingle {
		t.Errorf("Shape = %v, want ShapeSingle", f.Shape)
	}
	if len(f.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(f.Records))
	}
	rec := f.Records[0]
	if rec.ID != "abc" || rec.Name != "Hello" {
		t.Errorf("got id=%q name=%q, want abc/Hello", rec.ID, rec.Name)
	}
	if rec.Source != path {
		t.Errorf("Source = %q, want %q", rec.Source, path)
	}
}

func TestDecodeFileArray(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "legacy.json", `[{"id":"a","name":"One"},{"id":"b","name":"Two"}]`)

	f, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if f.Shape != ShapeArray {
		t.Errorf("Shape = %v, want ShapeArray", f.Shape)
	}
	if len(f.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(f.Records))
	}
	if f.Records[1].Source != path+"#1" {
		t.Errorf("Source = %q, want %q", f.Records[1].Source, path+"#1")
	}
}

func TestDecodeFileNumericID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "old.json", `{"id":42,"name":"Legacy"}`)

	f, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if f.Records[0].ID != "42" {
		t.Errorf("ID = %q, want %q", f.Records[0].ID, "42")
	}
}

func TestDecodeFileMissingIDAllowed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "new.json", `{"name":"Not Yet Created"}`)

	f, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if f.Records[0].ID != "" {
		t.Errorf("ID = %q, want empty", f.Records[0].ID)
	}
}

func TestDecodeFileMalformed(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"truncated", `{"id":"abc"`},
		{"scalar", `"just a string"`},
		{"array with non-object entry", `[{"id":"a"},42]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "bad-"+Slugify(tt.name)+".json", tt.content)
			_, err := DecodeFile(path)
			if !errors.Is(err, syncerrors.ErrMalformedRecord) {
				t.Errorf("DecodeFile error = %v, want ErrMalformedRecord", err)
			}
		})
	}
}

func TestDecodeDirMissingIsEmpty(t *testing.T) {
	records, malformed, err := DecodeDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("DecodeDir failed: %v", err)
	}
	if len(records) != 0 || len(malformed) != 0 {
		t.Errorf("got %d records and %d malformed, want none", len(records), len(malformed))
	}
}

func TestDecodeDirIsolatesMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-good.json", `{"id":"a","name":"Good"}`)
	bad := writeFile(t, dir, "b-bad.json", `{{{`)
	writeFile(t, dir, "c-good.json", `{"id":"c","name":"Also Good"}`)
	writeFile(t, dir, "ignored.txt", `not json`)

	records, malformed, err := DecodeDir(dir)
	if err != nil {
		t.Fatalf("DecodeDir failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "a" || records[1].ID != "c" {
		t.Errorf("got ids %q and %q, want a and c", records[0].ID, records[1].ID)
	}
	if len(malformed) != 1 || malformed[0].Path != bad {
		t.Fatalf("malformed = %v, want a single entry for %s", malformed, bad)
	}
	if !errors.Is(malformed[0], syncerrors.ErrMalformedRecord) {
		t.Errorf("malformed error = %v, want ErrMalformedRecord", malformed[0].Err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec := Record{
		ID:      "abc",
		Name:    "Hello World",
		Payload: []byte(`{"id":"abc","name":"Hello World","nodes":[{"type":"start"}]}`),
	}

	path, err := Write(dir, rec)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "abc-hello-world.json" {
		t.Errorf("wrote %q, want abc-hello-world.json", filepath.Base(path))
	}

	f, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile after Write failed: %v", err)
	}
	got := f.Records[0]
	if got.ID != rec.ID || got.Name != rec.Name {
		t.Errorf("round trip got id=%q name=%q", got.ID, got.Name)
	}
}

func TestWriteRequiresID(t *testing.T) {
	_, err := Write(t.TempDir(), Record{Name: "No ID", Payload: []byte(`{}`)})
	if err == nil {
		t.Fatal("expected an error for a record with no id")
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	rec := Record{ID: "x", Name: "Same", Payload: []byte(`{"id":"x","name":"Same","v":1}`)}
	if _, err := Write(dir, rec); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	rec.Payload = []byte(`{"id":"x","name":"Same","v":2}`)
	path, err := Write(dir, rec)
	if err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "{\n  \"id\": \"x\",\n  \"name\": \"Same\",\n  \"v\": 2\n}\n" {
		t.Errorf("unexpected contents after overwrite:\n%s", data)
	}
}
