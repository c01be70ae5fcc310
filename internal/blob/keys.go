// Package blob implements the content store for file bytes.
package blob

import (
	"regexp"
	"strings"
)

var copySuffix = regexp.MustCompile(`^(.*?)\s*\((\d+)\)$`)

// Key derives the object key for a file:
//
//	{baseName}_{ownerID}[_{parentFolderID}][ (n)]
//
// The " (n)" suffix carried by copied names moves to the end of the key so
// "Report (2)" and "Report" never share a key.
func Key(name, ownerID string, parentID *string) string {
	base := strings.TrimSpace(name)
	suffix := ""
	if m := copySuffix.FindStringSubmatch(base); m != nil {
		base, suffix = strings.TrimSpace(m[1]), " ("+m[2]+")"
	}

	var b strings.Builder
	b.WriteString(sanitize(base))
	b.WriteString("_")
	b.WriteString(sanitize(ownerID))
	if parentID != nil {
		b.WriteString("_")
		b.WriteString(sanitize(*parentID))
	}
	b.WriteString(suffix)
	return b.String()
}

// WithID disambiguates a key that is already taken by another object
func WithID(key, id string) string {
	return key + "_" + sanitize(id)
}

func sanitize(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
}
