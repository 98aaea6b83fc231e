package draft

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/starsandeep/sfsync/pkg/database"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

type DraftRepository interface {
	Save(ctx context.Context, draft Draft) (Draft, error)
	Get(ctx context.Context, userID, id string) (Draft, error)
	ListByUser(ctx context.Context, userID string) ([]Draft, error)
	Delete(ctx context.Context, userID, id string) error
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
	now    func() time.Time
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Save upserts a draft by id. A draft id that belongs to another user is
// reported as not found.
func (r *Repository) Save(ctx context.Context, draft Draft) (Draft, error) {
	ctx, span := tracing.StartSpan(ctx, "DraftRepository.Save", attribute.String("draft.id", draft.ID))
	defer span.End()

	now := r.now().UTC()
	draft.UpdatedAt = now
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"draft_id":      draft.ID,
		"user_id":       draft.UserID,
		"source_object": draft.SourceObject,
		"target_object": draft.TargetObject,
		"rows":          len(draft.Rows),
	})

	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx database.Tx) error {
		owner, err := r.ownerOf(ctx, tx, draft.ID)
		if err != nil {
			return err
		}
		if owner != "" && owner != draft.UserID {
			log.Warn("Draft belongs to another user")
			return httperror.NewHTTPError(http.StatusNotFound, "draft not found")
		}

		ib := draftStruct.InsertInto(draftTable, FromDraft(draft))
		ib.OnConflict([]string{"id"}, "source_object", "target_object", "rows", "resolved", "fetch_status", "fingerprint", "updated_at")
		query, args := ib.Build()

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).Error("error upserting draft")
			return httperror.NewHTTPError(http.StatusInternalServerError, "error saving draft")
		}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return Draft{}, err
	}

	log.Info("Saved draft")
	return draft, nil
}

func (r *Repository) ownerOf(ctx context.Context, tx database.Tx, id string) (string, error) {
	sb := database.NewSelectBuilder()
	sb.Select("user_id").From(draftTable).Where(sb.Equal("id", id))
	sb.ForUpdate()
	query, args := sb.Build()

	var owner string
	if err := tx.GetContext(ctx, &owner, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("draft_id", id).Error("error reading draft owner")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "error saving draft")
	}
	return owner, nil
}

func (r *Repository) Get(ctx context.Context, userID, id string) (Draft, error) {
	ctx, span := tracing.StartSpan(ctx, "DraftRepository.Get", attribute.String("draft.id", id))
	defer span.End()

	sb := draftStruct.SelectFrom(draftTable)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("user_id", userID),
	)
	query, args := sb.Build()

	var row DraftRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.WithContext(ctx).WithField("draft_id", id).Warn("Draft not found")
			return Draft{}, httperror.NewHTTPError(http.StatusNotFound, "draft not found")
		}
		r.logger.WithContext(ctx).WithError(err).WithField("draft_id", id).Error("error getting draft")
		tracing.RecordError(span, err)
		return Draft{}, httperror.NewHTTPError(http.StatusInternalServerError, "error getting draft")
	}

	return ToDraft(&row), nil
}

// ListByUser returns the user's drafts, most recently updated first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Draft, error) {
	ctx, span := tracing.StartSpan(ctx, "DraftRepository.ListByUser")
	defer span.End()

	sb := draftStruct.SelectFrom(draftTable)
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("updated_at").Desc()
	query, args := sb.Build()

	var rows []DraftRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("user_id", userID).Error("error listing drafts")
		tracing.RecordError(span, err)
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "error listing drafts")
	}

	drafts := make([]Draft, 0, len(rows))
	for i := range rows {
		drafts = append(drafts, ToDraft(&rows[i]))
	}
	return drafts, nil
}

func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "DraftRepository.Delete", attribute.String("draft.id", id))
	defer span.End()

	db := draftStruct.DeleteFrom(draftTable)
	db.Where(
		db.Equal("id", id),
		db.Equal("user_id", userID),
	)
	query, args := db.Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("draft_id", id).Error("error deleting draft")
		tracing.RecordError(span, err)
		return httperror.NewHTTPError(http.StatusInternalServerError, "error deleting draft")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "draft not found")
	}

	r.logger.WithContext(ctx).WithField("draft_id", id).Info("Deleted draft")
	return nil
}
