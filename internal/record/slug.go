package record

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9._-]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify returns a filesystem-friendly slug based on the provided value:
// lowercased, invalid filename characters replaced with dashes, runs of
// dashes collapsed.
func Slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugInvalid.ReplaceAllString(value, "-")
	value = slugDashes.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-")
	if value == "" {
		return "record"
	}
	return value
}

// Filename derives the deterministic on-disk name for a record. The id is
// part of the name so re-exports overwrite the same file.
func Filename(id, name string) string {
	return id + "-" + Slugify(name) + ".json"
}
