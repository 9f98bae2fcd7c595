package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
)

// FileShape distinguishes the two accepted file conventions.
type FileShape int

const (
	// ShapeSingle is one record object per file, the current convention.
	ShapeSingle FileShape = iota

	// ShapeArray is a legacy export holding an array of record objects.
	ShapeArray
)

// File is the decoded form of one local JSON file.
type File struct {
	Path    string
	Shape   FileShape
	Records []Record
}

// FileError reports a local file that failed to decode. The file is excluded
// from the plan; other files proceed.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// DecodeFile reads a local record file. The content must be either a single
// JSON object or an array of JSON objects; anything else fails the whole file
// with ErrMalformedRecord. Array entries that are not objects are a hard
// error, not a skip, so a truncated or corrupted export is surfaced instead
// of partially imported.
func DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", syncerrors.ErrMalformedRecord)
	}

	f := &File{Path: path}
	switch trimmed[0] {
	case '{':
		rec, err := Parse(trimmed)
		if err != nil {
			return nil, err
		}
		rec.Source = path
		f.Shape = ShapeSingle
		f.Records = []Record{rec}

	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, fmt.Errorf("%w: %v", syncerrors.ErrMalformedRecord, err)
		}
		f.Shape = ShapeArray
		for i, element := range elements {
			rec, err := Parse(element)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			rec.Source = fmt.Sprintf("%s#%d", path, i)
			f.Records = append(f.Records, rec)
		}

	default:
		return nil, fmt.Errorf("%w: top-level value is neither an object nor an array", syncerrors.ErrMalformedRecord)
	}

	return f, nil
}

// DecodeDir decodes every *.json file in dir in lexical order. Malformed
// files are collected as FileErrors and excluded; valid files contribute
// their records. A missing directory yields no records and no error, matching
// a data root that simply has nothing of this kind yet.
func DecodeDir(dir string) ([]Record, []FileError, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(paths)

	var records []Record
	var malformed []FileError
	for _, path := range paths {
		f, err := DecodeFile(path)
		if err != nil {
			malformed = append(malformed, FileError{Path: path, Err: err})
			continue
		}
		records = append(records, f.Records...)
	}
	return records, malformed, nil
}

// Write encodes a record into dir under its derived filename, overwriting any
// existing file. The payload is written as-is apart from re-indentation; only
// the filename is derived, never the body. Returns the path written.
func Write(dir string, rec Record) (string, error) {
	if rec.ID == "" {
		return "", fmt.Errorf("record %q has no id", rec.Name)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, rec.Payload, "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", syncerrors.ErrMalformedRecord, err)
	}
	buf.WriteByte('\n')

	path := filepath.Join(dir, Filename(rec.ID, rec.Name))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}
