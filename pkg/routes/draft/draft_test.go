package draft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/starsandeep/sfsync/internal/repositories/draft"
	"github.com/starsandeep/sfsync/pkg/middleware"
	"github.com/starsandeep/sfsync/pkg/session"
	"github.com/stretchr/testify/assert"
)

type stubService struct {
	deleted []string
}

func (s *stubService) SaveDraft(ctx context.Context, userID, sessionID string) (draft.Draft, error) {
	return draft.Draft{ID: "3b241101-e2bb-4255-8caf-4136c566a962", UserID: userID}, nil
}

func (s *stubService) ListDrafts(ctx context.Context, userID string) ([]draft.Draft, error) {
	return []draft.Draft{{ID: "3b241101-e2bb-4255-8caf-4136c566a962", UserID: userID}}, nil
}

func (s *stubService) ResumeDraft(ctx context.Context, userID, draftID string) (session.Snapshot, error) {
	return session.Snapshot{ID: "new", DraftID: draftID}, nil
}

func (s *stubService) DeleteDraft(ctx context.Context, userID, draftID string) error {
	s.deleted = append(s.deleted, draftID)
	return nil
}

func newTestEcho(service Service) *echo.Echo {
	logger := ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(middleware.Context())
	NewHandler(service, logger).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestDraftRoutes(t *testing.T) {
	const draftID = "3b241101-e2bb-4255-8caf-4136c566a962"
	svc := &stubService{}
	e := newTestEcho(svc)

	serve := func(method, path string, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if user != "" {
			req.Header.Set(middleware.HeaderUserID, user)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/v1/drafts", "").Code)

	rec := serve(http.MethodGet, "/api/v1/drafts", "u1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/api/v1/sessions/"+draftID+"/draft", "u1").Code)
	assert.Equal(t, http.StatusCreated, serve(http.MethodPost, "/api/v1/drafts/"+draftID+"/resume", "u1").Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPost, "/api/v1/drafts/nope/resume", "u1").Code)

	assert.Equal(t, http.StatusNoContent, serve(http.MethodDelete, "/api/v1/drafts/"+draftID, "u1").Code)
	assert.Equal(t, []string{draftID}, svc.deleted)
}
