package wizard

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/starsandeep/sfsync/pkg/metrics"
	"github.com/starsandeep/sfsync/pkg/session"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Load runs acquisition and reconciliation for the session's current pair and
// returns the evaluated result. Metadata failures never fail a load; they show
// up as the snapshot's fetch status and as unavailable picklist checks.
//
// A load whose selection changed, or whose session was closed, while it was
// fetching is discarded.
func (s *Service) Load(ctx context.Context, userID, id string) (session.Snapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "wizard.Load", attribute.String("session.id", id))
	defer span.End()

	sess, err := s.session(userID, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	ticket := sess.BeginLoad()
	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id":    id,
		"source_object": ticket.Selection.SourceObject,
		"target_object": ticket.Selection.TargetObject,
		"generation":    ticket.Generation,
	})

	var result session.LoadResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result = s.fetch(gctx, sess, ticket)
		return nil
	})
	g.Go(func() error {
		return wait(gctx, s.config.LoadMinDuration)
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("load abandoned by caller")
		tracing.RecordError(span, err)
		return session.Snapshot{}, httperror.NewHTTPError(http.StatusRequestTimeout, "load cancelled")
	}

	applied, err := sess.ApplyLoad(ticket, result)
	if err != nil {
		log.WithError(err).Error("failed to apply load")
		return session.Snapshot{}, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !applied {
		metrics.RecordStaleLoad()
		if sess.Closed() {
			log.Info("session closed during load, result discarded")
			return session.Snapshot{}, httperror.NewHTTPErrorf(http.StatusNotFound, "session %s not found", id)
		}
		log.Info("selection changed during load, result discarded")
		return s.snapshot(sess), nil
	}

	metrics.RecordLoad(string(result.FetchStatus))
	span.SetAttributes(
		attribute.String("fetch_status", string(result.FetchStatus)),
		attribute.Int("entries", len(result.Entries)),
		attribute.Bool("pair_fetched", result.PairFetched),
	)
	log.WithFields(map[string]any{
		"fetch_status": result.FetchStatus,
		"entries":      len(result.Entries),
		"pair_fetched": result.PairFetched,
	}).Info("load applied")

	return s.snapshot(sess), nil
}

// fetch acquires the field mapping and, unless the session already holds it
// or has seen it fail, both sides' object metadata. It never fails.
func (s *Service) fetch(ctx context.Context, sess *session.Session, ticket session.Ticket) session.LoadResult {
	sel := ticket.Selection
	result := session.LoadResult{}

	var g errgroup.Group
	g.Go(func() error {
		result.Entries, result.FetchStatus = s.acquirer.FieldMapping(ctx, sel.SourceObject)
		return nil
	})
	if sess.ClaimPair(ticket) {
		g.Go(func() error {
			source, target, err := s.acquirer.ObjectPair(ctx, sel.SourceObject, sel.TargetObject)
			switch {
			case err == nil:
				sess.StorePair(ticket, source, target)
				result.Source, result.Target, result.PairFetched = source, target, true
			case ctx.Err() != nil:
				// abandoned, not failed
				sess.ReleasePair(ticket)
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
