package mapping

import "github.com/starsandeep/sfsync/pkg/models"

// Reconcile merges a fresh fetch with the previous row set.
//
// The result has exactly the fetched rows, in fetched order. A fetched row
// whose source field also appears in previous takes every value from the
// previous row except the two types, which always come from the fetch.
// Previous rows missing from the fetch are dropped. Repeated source names are
// paired by occurrence so reconciling a row set with itself is a no-op.
func Reconcile(previous, fetched []models.MappingRow) []models.MappingRow {
	if len(fetched) == 0 {
		return []models.MappingRow{}
	}

	bySource := make(map[string][]models.MappingRow, len(previous))
	for _, row := range previous {
		bySource[row.SourceField] = append(bySource[row.SourceField], row)
	}

	merged := make([]models.MappingRow, 0, len(fetched))
	for _, f := range fetched {
		candidates := bySource[f.SourceField]
		if len(candidates) == 0 {
			merged = append(merged, f.Clone())
			continue
		}

		p := candidates[0].Clone()
		bySource[f.SourceField] = candidates[1:]

		p.SourceType = f.SourceType
		p.TargetType = f.TargetType
		merged = append(merged, p)
	}

	return merged
}
