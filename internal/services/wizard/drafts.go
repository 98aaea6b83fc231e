package wizard

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/starsandeep/sfsync/internal/repositories/draft"
	"github.com/starsandeep/sfsync/pkg/session"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

func errDraftsDisabled() error {
	return httperror.NewHTTPError(http.StatusNotImplemented, "drafts are not enabled")
}

// SaveDraft stores the session's selection, rows, resolutions and metadata
// fingerprint. Saving the same session again overwrites its draft.
func (s *Service) SaveDraft(ctx context.Context, userID, id string) (draft.Draft, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.SaveDraft", attribute.String("session.id", id))
	defer span.End()

	if !s.DraftsEnabled() {
		return draft.Draft{}, errDraftsDisabled()
	}

	sess, err := s.session(userID, id)
	if err != nil {
		return draft.Draft{}, err
	}

	draftID := sess.DraftID()
	if draftID == "" {
		draftID = uuid.NewString()
	}

	snap := s.snapshot(sess)
	saved, err := s.drafts.Save(ctx, draft.Draft{
		ID:           draftID,
		UserID:       userID,
		SourceObject: snap.Selection.SourceObject,
		TargetObject: snap.Selection.TargetObject,
		Rows:         snap.Rows,
		Resolved:     snap.Resolved,
		FetchStatus:  string(snap.FetchStatus),
		Fingerprint:  sess.Fingerprint(),
	})
	if err != nil {
		return draft.Draft{}, err
	}

	sess.SetDraftID(saved.ID)
	return saved, nil
}

func (s *Service) ListDrafts(ctx context.Context, userID string) ([]draft.Draft, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.ListDrafts")
	defer span.End()

	if !s.DraftsEnabled() {
		return nil, errDraftsDisabled()
	}
	return s.drafts.ListByUser(ctx, userID)
}

// ResumeDraft starts a new session from a draft. Rows and resolutions are
// restored as saved; nothing is fetched until the next load.
func (s *Service) ResumeDraft(ctx context.Context, userID, draftID string) (session.Snapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.ResumeDraft", attribute.String("draft.id", draftID))
	defer span.End()

	if !s.DraftsEnabled() {
		return session.Snapshot{}, errDraftsDisabled()
	}

	d, err := s.drafts.Get(ctx, userID, draftID)
	if err != nil {
		return session.Snapshot{}, err
	}

	sess := s.sessions.Create(userID, session.Selection{SourceObject: d.SourceObject, TargetObject: d.TargetObject})
	sess.Restore(d.Rows, d.Resolved, d.Fingerprint)
	sess.SetDraftID(d.ID)

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": sess.ID(),
		"draft_id":   d.ID,
		"rows":       len(d.Rows),
	}).Info("wizard session resumed from draft")
	return s.snapshot(sess), nil
}

func (s *Service) DeleteDraft(ctx context.Context, userID, draftID string) error {
	ctx, span := tracing.StartSpan(ctx, "wizard.DeleteDraft", attribute.String("draft.id", draftID))
	defer span.End()

	if !s.DraftsEnabled() {
		return errDraftsDisabled()
	}
	return s.drafts.Delete(ctx, userID, draftID)
}
