package wizard

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/metadata"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	require.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, status, httperror.GetStatusCode(err))
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches, reconciles and evaluates", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", account)
		assert.False(t, created.Loaded)

		snap, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)

		assert.True(t, snap.Loaded)
		assert.Equal(t, metadata.FetchStatusOK, snap.FetchStatus)
		assert.True(t, snap.PicklistAvailable)
		require.Len(t, snap.Rows, 3)

		status, ok := snap.Evaluation.Row("Status__c")
		require.True(t, ok)
		assert.Equal(t, 85, status.ConfidenceScore)

		assert.False(t, snap.Evaluation.CanProceed)
		assert.True(t, snap.Evaluation.HasFailure(models.GateReasonSyncBlockingError))
	})

	t.Run("mapping failure falls back to no rows", func(t *testing.T) {
		f := newFixture(false)
		f.provider.mappingErr = errUnavailable
		created := f.service.CreateSession(ctx, "u1", account)

		snap, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, metadata.FetchStatusFallbackEmpty, snap.FetchStatus)
		assert.Empty(t, snap.Rows)
		assert.True(t, snap.Evaluation.HasFailure(models.GateReasonNoMappings))
	})

	t.Run("mapping failure after a good load uses the last good mapping", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", account)
		_, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)

		f.provider.mu.Lock()
		f.provider.mappingErr = errUnavailable
		f.provider.mu.Unlock()

		snap, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, metadata.FetchStatusFallbackCached, snap.FetchStatus)
		assert.Len(t, snap.Rows, 3)
	})

	t.Run("object metadata is fetched once per pair", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", account)

		for i := 0; i < 3; i++ {
			snap, err := f.service.Load(ctx, "u1", created.ID)
			require.NoError(t, err)
			assert.True(t, snap.PicklistAvailable)
		}
		assert.Equal(t, int32(2), f.provider.objectHits.Load())
		assert.Equal(t, int32(3), f.provider.mappingHits.Load())
	})

	t.Run("unavailable metadata disables picklist checks", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", session.Selection{SourceObject: "Contact", TargetObject: "Contact"})

		snap, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.False(t, snap.PicklistAvailable)
		assert.Len(t, snap.Rows, 1)
		assert.True(t, snap.Evaluation.CanProceed)
	})

	t.Run("waits for the minimum duration", func(t *testing.T) {
		f := newFixture(false)
		f.service.config.LoadMinDuration = 40 * time.Millisecond
		created := f.service.CreateSession(ctx, "u1", account)

		start := time.Now()
		_, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("cancelled caller", func(t *testing.T) {
		f := newFixture(false)
		f.service.config.LoadMinDuration = time.Second
		created := f.service.CreateSession(ctx, "u1", account)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.service.Load(cctx, "u1", created.ID)
		assertStatus(t, err, http.StatusRequestTimeout)
	})

	t.Run("retry after a cancelled load keeps picklist checks", func(t *testing.T) {
		f := newFixture(false)
		f.service.config.LoadMinDuration = time.Second
		created := f.service.CreateSession(ctx, "u1", account)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.service.Load(cctx, "u1", created.ID)
		assertStatus(t, err, http.StatusRequestTimeout)

		f.service.config.LoadMinDuration = 0
		snap, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.True(t, snap.PicklistAvailable)
		assert.NotEmpty(t, snap.Evaluation.Mismatches.Picklist)
		status, ok := snap.Evaluation.Row("Status__c")
		require.True(t, ok)
		assert.Equal(t, 85, status.ConfidenceScore)
		assert.False(t, snap.Evaluation.CanProceed)
	})

	t.Run("reselecting a pair keeps its picklist checks", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", account)
		first, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		require.True(t, first.PicklistAvailable)

		contact := session.Selection{SourceObject: "Contact", TargetObject: "Contact"}
		_, err = f.service.SelectObjects(ctx, "u1", created.ID, contact)
		require.NoError(t, err)
		_, err = f.service.SelectObjects(ctx, "u1", created.ID, account)
		require.NoError(t, err)

		hits := f.provider.objectHits.Load()
		snap, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, hits, f.provider.objectHits.Load(), "metadata for the pair is reused")

		assert.True(t, snap.PicklistAvailable)
		status, ok := snap.Evaluation.Row("Status__c")
		require.True(t, ok)
		assert.Equal(t, 85, status.ConfidenceScore)
		assert.True(t, snap.Evaluation.HasFailure(models.GateReasonSyncBlockingError))
	})

	t.Run("a failed pair is not retried", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", session.Selection{SourceObject: "Contact", TargetObject: "Contact"})

		_, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		hits := f.provider.objectHits.Load()
		require.Positive(t, hits)

		snap, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.False(t, snap.PicklistAvailable)
		assert.Equal(t, hits, f.provider.objectHits.Load())
	})
}

func TestService_LoadDiscardsStaleResults(t *testing.T) {
	ctx := context.Background()

	startBlockedLoad := func(t *testing.T, f *fixture, id string) <-chan error {
		t.Helper()
		f.provider.gate = make(chan struct{})
		done := make(chan error, 1)
		go func() {
			_, err := f.service.Load(ctx, "u1", id)
			done <- err
		}()
		require.Eventually(t, func() bool { return f.provider.mappingHits.Load() >= 1 }, time.Second, time.Millisecond)
		return done
	}

	t.Run("selection changed", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", account)
		done := startBlockedLoad(t, f, created.ID)

		contact := session.Selection{SourceObject: "Contact", TargetObject: "Contact"}
		_, err := f.service.SelectObjects(ctx, "u1", created.ID, contact)
		require.NoError(t, err)
		close(f.provider.gate)
		require.NoError(t, <-done)

		snap, err := f.service.GetSession(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, contact, snap.Selection)
		assert.False(t, snap.Loaded)
		assert.Empty(t, snap.Rows)
	})

	t.Run("session closed", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", account)
		done := startBlockedLoad(t, f, created.ID)

		require.NoError(t, f.service.DeleteSession(ctx, "u1", created.ID))
		close(f.provider.gate)
		assertStatus(t, <-done, http.StatusNotFound)
	})
}

func TestService_SessionOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	created := f.service.CreateSession(ctx, "u1", account)

	_, err := f.service.GetSession(ctx, "u2", created.ID)
	assertStatus(t, err, http.StatusNotFound)
	assertStatus(t, f.service.DeleteSession(ctx, "u2", created.ID), http.StatusNotFound)

	_, err = f.service.GetSession(ctx, "u1", "missing")
	assertStatus(t, err, http.StatusNotFound)

	anonymous := f.service.CreateSession(ctx, "", account)
	_, err = f.service.GetSession(ctx, "anyone", anonymous.ID)
	assert.NoError(t, err)
}

func TestService_EditsAndResolutions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	created := f.service.CreateSession(ctx, "u1", account)
	_, err := f.service.Load(ctx, "u1", created.ID)
	require.NoError(t, err)

	t.Run("resolving the blocking picklist unblocks", func(t *testing.T) {
		snap, err := f.service.Resolve(ctx, "u1", created.ID, mapping.PicklistKey("Rating", "Rating"))
		require.NoError(t, err)
		assert.True(t, snap.Evaluation.CanProceed)

		rating, _ := snap.Evaluation.Row("Rating")
		assert.Equal(t, 100, rating.ConfidenceScore)
		assert.Contains(t, snap.Resolved, mapping.PicklistKey("Rating", "Rating"))
	})

	t.Run("resolving a mismatch that is not reported fails", func(t *testing.T) {
		_, err := f.service.Resolve(ctx, "u1", created.ID, mapping.MissingFieldKey("Email"))
		require.Error(t, err)
	})

	t.Run("resolutions survive a reload of unchanged metadata", func(t *testing.T) {
		snap, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.True(t, snap.Evaluation.CanProceed)
	})

	t.Run("retargeting onto a taken target blocks", func(t *testing.T) {
		target := "Email"
		snap, err := f.service.UpdateRow(ctx, "u1", created.ID, "Status__c", mapping.RowUpdate{TargetField: &target})
		require.NoError(t, err)
		assert.True(t, snap.Evaluation.HasFailure(models.GateReasonDuplicateTarget))

		target = "Status__c"
		snap, err = f.service.UpdateRow(ctx, "u1", created.ID, "Status__c", mapping.RowUpdate{TargetField: &target})
		require.NoError(t, err)
		assert.True(t, snap.Evaluation.CanProceed)
	})

	t.Run("unknown row", func(t *testing.T) {
		include := false
		_, err := f.service.UpdateRow(ctx, "u1", created.ID, "Nope", mapping.RowUpdate{IncludeInSync: &include})
		require.Error(t, err)
	})
}

func TestService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked by the gate", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", account)
		_, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)

		_, err = f.service.Complete(ctx, "u1", created.ID)
		assertStatus(t, err, http.StatusUnprocessableEntity)
		failures, ok := httperror.ToHTTPError(err).Meta["gate_failures"].([]models.GateFailure)
		require.True(t, ok)
		require.NotEmpty(t, failures)
		assert.Equal(t, models.GateReasonSyncBlockingError, failures[0].Reason)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("emits the update", func(t *testing.T) {
		f := newFixture(false)
		created := f.service.CreateSession(ctx, "u1", account)
		_, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)
		_, err = f.service.Resolve(ctx, "u1", created.ID, mapping.PicklistKey("Rating", "Rating"))
		require.NoError(t, err)

		update, err := f.service.Complete(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Status__c": "Status__c", "Rating": "Rating", "Email": "Email"}, update.Mappings)
		assert.True(t, update.SyncAllFields)

		require.Len(t, f.publisher.events, 1)
		event := f.publisher.events[0]
		assert.Equal(t, created.ID, event.SessionID)
		assert.Equal(t, "u1", event.UserID)
		assert.Equal(t, "Account", event.SourceObject)
		assert.Equal(t, update, event.Update)
	})

	t.Run("publish failure does not fail completion", func(t *testing.T) {
		f := newFixture(false)
		f.publisher.err = errors.New("broker down")
		created := f.service.CreateSession(ctx, "u1", session.Selection{SourceObject: "Contact", TargetObject: "Contact"})
		_, err := f.service.Load(ctx, "u1", created.ID)
		require.NoError(t, err)

		update, err := f.service.Complete(ctx, "u1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"FirstName"}, update.SelectedFields)
	})
}

func TestService_Evaluate(t *testing.T) {
	f := newFixture(false)
	eval := f.service.Evaluate(context.Background(), mapping.EvaluationRequest{
		Rows: []models.MappingRow{
			{SourceField: "Email", TargetField: "Email", SourceType: models.FieldTypeEmail, TargetType: models.FieldTypeEmail},
			{SourceField: "Email2", TargetField: "Email", SourceType: models.FieldTypeEmail, TargetType: models.FieldTypeEmail},
		},
	})

	assert.False(t, eval.CanProceed)
	assert.Equal(t, []string{"Email"}, eval.DuplicateTargetFields)
}
