package mapping

import (
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/starsandeep/sfsync/pkg/models"
)

// BuildMappingUpdate produces the payload handed to the wizard shell when the
// user advances. Only mapped rows appear; their metadata is recorded whether
// or not they are included in the sync.
func BuildMappingUpdate(rows []models.MappingRow) models.MappingUpdate {
	mapped := ectolinq.Filter(rows, func(row models.MappingRow) bool {
		return row.IsMapped()
	})

	update := models.MappingUpdate{
		Mappings:        make(map[string]string, len(mapped)),
		Transformations: map[string]any{},
		SelectedFields:  make([]string, 0, len(mapped)),
		Metadata:        make(map[string]models.FieldSyncMetadata, len(mapped)),
		SyncAllFields:   len(mapped) > 0,
	}

	for _, row := range mapped {
		update.Mappings[row.SourceField] = strings.TrimSpace(row.TargetField)
		update.SelectedFields = append(update.SelectedFields, row.SourceField)
		update.Metadata[row.SourceField] = models.FieldSyncMetadata{
			IncludeInSync: row.IncludeInSync,
			IsPrimaryKey:  row.IsPrimaryKey,
			MaskPII:       row.MaskPII,
			IsPII:         row.IsPII,
		}
		if !row.IncludeInSync {
			update.SyncAllFields = false
		}
	}

	return update
}
