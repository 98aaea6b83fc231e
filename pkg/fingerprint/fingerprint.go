// Package fingerprint hashes fetched metadata so a load can tell whether the
// data behind earlier resolutions has changed.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
)

// Generate returns the SHA256 of the canonical JSON form of value. Struct
// values are encoded through their JSON tags first, so map key order and
// struct field order never affect the result. Paths listed in exclude
// (dot notation, e.g. "fields.label") are left out.
func Generate(value any, exclude ...string) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode value for fingerprint: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("failed to decode value for fingerprint: %w", err)
	}

	excluded := make(map[string]bool, len(exclude))
	for _, path := range exclude {
		excluded[path] = true
	}

	var b strings.Builder
	canonicalize(&b, generic, excluded, "")
	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:]), nil
}

// Load fingerprints everything a mapping load fetched. Nil metadata hashes
// differently from empty metadata, so a side that comes back after a failed
// fetch counts as a change.
func Load(entries []models.FieldMappingEntry, source, target *fields.Object) (string, error) {
	return Generate(struct {
		Entries []models.FieldMappingEntry `json:"entries"`
		Source  *fields.Object             `json:"source"`
		Target  *fields.Object             `json:"target"`
	}{entries, source, target}, "source.fields.label", "target.fields.label")
}

// HasChanged treats an empty previous fingerprint as "nothing loaded yet".
func HasChanged(previous, current string) bool {
	return previous != "" && previous != current
}

func canonicalize(b *strings.Builder, value any, excluded map[string]bool, path string) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		first := true
		for _, k := range keys {
			fieldPath := k
			if path != "" {
				fieldPath = path + "." + k
			}
			if isExcluded(fieldPath, excluded) {
				continue
			}
			if !first {
				b.WriteByte(',')
			}
			first = false
			key, _ := json.Marshal(k)
			b.Write(key)
			b.WriteByte(':')
			canonicalize(b, v[k], excluded, fieldPath)
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			// elements share their parent's path
			canonicalize(b, item, excluded, path)
		}
		b.WriteByte(']')
	default:
		raw, _ := json.Marshal(v)
		b.Write(raw)
	}
}

func isExcluded(path string, excluded map[string]bool) bool {
	if excluded[path] {
		return true
	}
	for prefix := range excluded {
		if strings.HasPrefix(path, prefix+".") {
			return true
		}
	}
	return false
}
