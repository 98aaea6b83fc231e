package mapping

import (
	"sort"

	"github.com/starsandeep/sfsync/pkg/models"
)

// ResolutionKey identifies a mismatch the user has explicitly resolved.
// Missing-field resolutions leave TargetField empty.
type ResolutionKey struct {
	Kind        models.MismatchKind `json:"kind" yaml:"kind" validate:"required,oneof=picklist character_limit missing_field"`
	SourceField string              `json:"source_field" yaml:"source_field" validate:"required"`
	TargetField string              `json:"target_field,omitempty" yaml:"target_field,omitempty"`
}

// PicklistKey resolves the picklist mismatch on the source/target field pair.
func PicklistKey(source, target string) ResolutionKey {
	return ResolutionKey{Kind: models.MismatchKindPicklist, SourceField: source, TargetField: target}
}

// CharacterLimitKey resolves the character-limit mismatch on the field pair.
func CharacterLimitKey(source, target string) ResolutionKey {
	return ResolutionKey{Kind: models.MismatchKindCharacterLimit, SourceField: source, TargetField: target}
}

// MissingFieldKey resolves the missing-target mismatch for a source field.
func MissingFieldKey(source string) ResolutionKey {
	return ResolutionKey{Kind: models.MismatchKindMissingField, SourceField: source}
}

// Normalized drops the target of missing-field keys so they compare by source only.
func (k ResolutionKey) Normalized() ResolutionKey {
	if k.Kind == models.MismatchKindMissingField {
		k.TargetField = ""
	}
	return k
}

// ResolvedSet excludes resolved mismatches from every later detector pass.
// It is not safe for concurrent use; the owning session serialises access.
type ResolvedSet struct {
	keys map[ResolutionKey]struct{}
}

// NewResolvedSet returns a set holding the normalized keys.
func NewResolvedSet(keys ...ResolutionKey) *ResolvedSet {
	s := &ResolvedSet{keys: make(map[ResolutionKey]struct{}, len(keys))}
	for _, k := range keys {
		s.Resolve(k)
	}
	return s
}

// Resolve adds the normalized key. Adding a key twice is a no-op.
func (s *ResolvedSet) Resolve(key ResolutionKey) {
	if s.keys == nil {
		s.keys = make(map[ResolutionKey]struct{})
	}
	s.keys[key.Normalized()] = struct{}{}
}

// Contains is nil-safe: a nil set resolves nothing.
func (s *ResolvedSet) Contains(key ResolutionKey) bool {
	if s == nil {
		return false
	}
	_, ok := s.keys[key.Normalized()]
	return ok
}

// Len is the number of resolved keys; zero for a nil set.
func (s *ResolvedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clear forgets every resolution, e.g. after the metadata changed.
func (s *ResolvedSet) Clear() {
	s.keys = make(map[ResolutionKey]struct{})
}

// Keys returns the resolved keys in a stable order.
func (s *ResolvedSet) Keys() []ResolutionKey {
	if s == nil {
		return []ResolutionKey{}
	}
	keys := make([]ResolutionKey, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		if keys[i].SourceField != keys[j].SourceField {
			return keys[i].SourceField < keys[j].SourceField
		}
		return keys[i].TargetField < keys[j].TargetField
	})
	return keys
}

// Clone returns an independent copy.
func (s *ResolvedSet) Clone() *ResolvedSet {
	return NewResolvedSet(s.Keys()...)
}
