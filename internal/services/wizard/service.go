// Package wizard implements the field-mapping step of the sync-job wizard on
// top of live sessions: loading candidates, user edits, resolutions,
// completion and drafts.
package wizard

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/starsandeep/sfsync/internal/repositories/draft"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/metadata"
	"github.com/starsandeep/sfsync/pkg/metrics"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/session"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

type EventPublisher interface {
	PublishMappingCompleted(ctx context.Context, event models.MappingCompletedEvent) error
}

type DraftRepository interface {
	Save(ctx context.Context, d draft.Draft) (draft.Draft, error)
	Get(ctx context.Context, userID, id string) (draft.Draft, error)
	ListByUser(ctx context.Context, userID string) ([]draft.Draft, error)
	Delete(ctx context.Context, userID, id string) error
}

type noopPublisher struct{}

func (noopPublisher) PublishMappingCompleted(context.Context, models.MappingCompletedEvent) error {
	return nil
}

type Config struct {
	// LoadMinDuration is the least time a load takes, so the progress
	// indicator does not flash.
	LoadMinDuration time.Duration
}

type Service struct {
	sessions  *session.Manager
	acquirer  *metadata.Acquirer
	evaluator *mapping.Evaluator
	publisher EventPublisher
	drafts    DraftRepository
	config    Config
	logger    ectologger.Logger
	now       func() time.Time
}

// NewService wires the wizard. A nil publisher drops completion events and a
// nil draft repository disables drafts.
func NewService(
	sessions *session.Manager,
	acquirer *metadata.Acquirer,
	evaluator *mapping.Evaluator,
	publisher EventPublisher,
	drafts DraftRepository,
	config Config,
	logger ectologger.Logger,
) *Service {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Service{
		sessions:  sessions,
		acquirer:  acquirer,
		evaluator: evaluator,
		publisher: publisher,
		drafts:    drafts,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) DraftsEnabled() bool {
	return s.drafts != nil
}

// Evaluate runs stages 3 to 6 over a posted row set without touching any session.
func (s *Service) Evaluate(ctx context.Context, req mapping.EvaluationRequest) models.Evaluation {
	_, span := tracing.StartSpan(ctx, "wizard.Evaluate", attribute.Int("rows", len(req.Rows)))
	defer span.End()

	eval := s.evaluator.Evaluate(req.Input())
	metrics.RecordEvaluation(eval)
	return eval
}

// session returns a live session owned by userID. Sessions created without a
// user are open to any caller.
func (s *Service) session(userID, id string) (*session.Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if owner := sess.UserID(); owner != "" && owner != userID {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "session %s not found", id)
	}
	return sess, nil
}

func (s *Service) snapshot(sess *session.Session) session.Snapshot {
	snap := sess.Snapshot(s.evaluator)
	metrics.RecordEvaluation(snap.Evaluation)
	return snap
}

func (s *Service) CreateSession(ctx context.Context, userID string, selection session.Selection) session.Snapshot {
	ctx, span := tracing.StartSpan(ctx, "wizard.CreateSession")
	defer span.End()

	sess := s.sessions.Create(userID, selection)
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id":    sess.ID(),
		"source_object": selection.SourceObject,
		"target_object": selection.TargetObject,
	}).Info("wizard session started")
	return s.snapshot(sess)
}

func (s *Service) GetSession(ctx context.Context, userID, id string) (session.Snapshot, error) {
	_, span := tracing.StartSpan(ctx, "wizard.GetSession", attribute.String("session.id", id))
	defer span.End()

	sess, err := s.session(userID, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.snapshot(sess), nil
}

// SelectObjects changes the object pair. Loads still in flight for the old
// pair will be discarded when they finish.
func (s *Service) SelectObjects(ctx context.Context, userID, id string, selection session.Selection) (session.Snapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.SelectObjects", attribute.String("session.id", id))
	defer span.End()

	sess, err := s.session(userID, id)
	if err != nil {
		return session.Snapshot{}, err
	}

	ticket := sess.Select(selection)
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id":    id,
		"source_object": selection.SourceObject,
		"target_object": selection.TargetObject,
		"generation":    ticket.Generation,
	}).Info("object selection changed")
	return s.snapshot(sess), nil
}

func (s *Service) UpdateRow(ctx context.Context, userID, id, sourceField string, update mapping.RowUpdate) (session.Snapshot, error) {
	_, span := tracing.StartSpan(ctx, "wizard.UpdateRow",
		attribute.String("session.id", id),
		attribute.String("row.source_field", sourceField))
	defer span.End()

	sess, err := s.session(userID, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := sess.UpdateRow(sourceField, update); err != nil {
		return session.Snapshot{}, err
	}
	return s.snapshot(sess), nil
}

func (s *Service) Resolve(ctx context.Context, userID, id string, key mapping.ResolutionKey) (session.Snapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.Resolve", attribute.String("session.id", id))
	defer span.End()

	sess, err := s.session(userID, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := sess.Resolve(key, s.evaluator); err != nil {
		return session.Snapshot{}, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id":   id,
		"kind":         key.Kind,
		"source_field": key.SourceField,
		"target_field": key.TargetField,
	}).Info("mismatch resolved")
	return s.snapshot(sess), nil
}

// DeleteSession exits the wizard. Anything still loading for it is dropped.
func (s *Service) DeleteSession(ctx context.Context, userID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "wizard.DeleteSession", attribute.String("session.id", id))
	defer span.End()

	if _, err := s.session(userID, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(id); err != nil {
		return err
	}
	s.logger.WithContext(ctx).WithField("session_id", id).Info("wizard session closed")
	return nil
}
