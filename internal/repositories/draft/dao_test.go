package draft

import (
	"testing"
	"time"

	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestDraftRowRoundTrip(t *testing.T) {
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	d := Draft{
		ID:           "1f3c2b1e-0000-4000-8000-000000000001",
		UserID:       "user-1",
		SourceObject: "Account",
		TargetObject: "Account",
		Rows: []models.MappingRow{
			{SourceField: "Email", SourceType: models.FieldTypeEmail, TargetField: "Email", TargetType: models.FieldTypeEmail, IncludeInSync: true},
		},
		Resolved:    []mapping.ResolutionKey{mapping.MissingFieldKey("Phone")},
		FetchStatus: "ok",
		Fingerprint: "9f86d081884c7d65",
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Minute),
	}

	row := FromDraft(d)
	assert.True(t, row.ID.Valid)
	assert.True(t, row.CreatedAt.Valid)
	assert.Equal(t, d, ToDraft(row))
}

func TestFromDraftDefaults(t *testing.T) {
	row := FromDraft(Draft{UserID: "u"})

	assert.False(t, row.ID.Valid)
	assert.False(t, row.FetchStatus.Valid)
	assert.False(t, row.Fingerprint.Valid)
	assert.False(t, row.CreatedAt.Valid)
	assert.NotNil(t, row.Rows.Data)
	assert.NotNil(t, row.Resolved.Data)

	v, err := row.Rows.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestToDraftNilCollections(t *testing.T) {
	d := ToDraft(&DraftRow{})
	assert.Equal(t, []models.MappingRow{}, d.Rows)
	assert.Equal(t, []mapping.ResolutionKey{}, d.Resolved)
}
