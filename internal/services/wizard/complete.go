package wizard

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/metrics"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	completionBlocked       = "blocked"
	completionPublished     = "published"
	completionPublishFailed = "publish_failed"
)

// Complete advances past the mapping step. When the gate blocks it returns a
// 422 whose meta carries the gate failures; otherwise it returns the
// onUpdateMappings payload and publishes it. A failed publish is logged and
// does not fail the completion.
func (s *Service) Complete(ctx context.Context, userID, id string) (models.MappingUpdate, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.Complete", attribute.String("session.id", id))
	defer span.End()

	sess, err := s.session(userID, id)
	if err != nil {
		return models.MappingUpdate{}, err
	}

	snap := s.snapshot(sess)
	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id":    id,
		"source_object": snap.Selection.SourceObject,
		"target_object": snap.Selection.TargetObject,
		"mapped":        snap.Evaluation.MappedCount,
	})

	if !snap.Evaluation.CanProceed {
		metrics.RecordCompletion(completionBlocked)
		log.WithField("gate_failures", len(snap.Evaluation.GateFailures)).Info("completion blocked by gate")
		return models.MappingUpdate{}, httperror.NewHTTPError(http.StatusUnprocessableEntity, "mapping step cannot be completed").
			AddMetaValue("gate_failures", snap.Evaluation.GateFailures)
	}

	update := mapping.BuildMappingUpdate(snap.Rows)
	event := models.MappingCompletedEvent{
		SessionID:    id,
		UserID:       snap.UserID,
		SourceObject: snap.Selection.SourceObject,
		TargetObject: snap.Selection.TargetObject,
		Update:       update,
		CompletedAt:  s.now().UTC(),
	}

	if err := s.publisher.PublishMappingCompleted(ctx, event); err != nil {
		metrics.RecordCompletion(completionPublishFailed)
		tracing.RecordError(span, err)
		log.WithError(err).Error("failed to publish mapping completed event")
		return update, nil
	}

	metrics.RecordCompletion(completionPublished)
	log.Info("mapping step completed")
	return update, nil
}
