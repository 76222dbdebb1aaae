package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"docfix/internal/classifier"
	"docfix/internal/domain"
	"docfix/internal/report"
	"docfix/internal/storage"
)

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label string `json:"label"`
	classifier.Verdict
}

type rewriteResponse struct {
	Document      string         `json:"document"`
	Labeled       int            `json:"labeled"`
	Skipped       int            `json:"skipped"`
	Substitutions int            `json:"substitutions"`
	Report        *report.Report `json:"report"`
}

type jobRequest struct {
	Path string `json:"path" form:"path"`
}

type indexData struct {
	Stats     storage.Stats
	Runs      []domain.Run
	Documents []documentView
}

type documentView struct {
	Path    string
	LastRun *domain.Run
}

func (s *Server) documentViews(ctx context.Context, paths []string) ([]documentView, error) {
	views := make([]documentView, 0, len(paths))
	for _, path := range paths {
		run, err := s.repo.FindLatestByPath(ctx, path)
		if err != nil {
			return nil, err
		}
		views = append(views, documentView{Path: path, LastRun: run})
	}
	return views, nil
}

func (s *Server) index(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	runs, err := s.repo.FindAll(ctx, 20, 0)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	var docs []documentView
	if s.documents != nil {
		paths, err := s.documents.GetDocuments(ctx)
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		if docs, err = s.documentViews(ctx, paths); err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
	}

	return s.render(c, "index.html", indexData{Stats: stats, Runs: runs, Documents: docs})
}

func (s *Server) stats(c echo.Context) error {
	stats, err := s.repo.GetStats(c.Request().Context())
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return s.render(c, "stats", stats)
}

func (s *Server) classify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	v := classifier.Explain(req.Text)
	return c.JSON(http.StatusOK, classifyResponse{Label: v.Category.Label(), Verdict: v})
}

func (s *Server) rewrite(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	doc, res := s.rewriter.Apply(string(body))

	rep, err := report.Verify(doc, s.substitutions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	s.sse.Broadcast(fmt.Sprintf("rewrite: %d labeled, %d skipped", res.Labeled, res.Skipped))

	return c.JSON(http.StatusOK, rewriteResponse{
		Document:      doc,
		Labeled:       res.Labeled,
		Skipped:       res.Skipped,
		Substitutions: res.Substitutions,
		Report:        rep,
	})
}

func (s *Server) getRuns(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	runs, err := s.repo.FindAll(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	return c.JSON(http.StatusOK, runs)
}

func (s *Server) getRun(c echo.Context) error {
	run, err := s.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) createJob(c echo.Context) error {
	if s.publisher == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "queue not configured"})
	}

	var req jobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "path required"})
	}

	job := domain.Job{
		ID:          uuid.NewString(),
		Path:        req.Path,
		Source:      domain.SourceAPI,
		RequestedAt: time.Now(),
	}
	if err := s.publisher.Publish(c.Request().Context(), job); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, job)
}

func (s *Server) getDocuments(c echo.Context) error {
	if s.documents == nil {
		return c.String(http.StatusServiceUnavailable, "document tracking not configured")
	}

	ctx := c.Request().Context()

	paths, err := s.documents.GetDocuments(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	docs, err := s.documentViews(ctx, paths)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return s.render(c, "documents", docs)
}

func (s *Server) addDocument(c echo.Context) error {
	if s.documents == nil {
		return c.String(http.StatusServiceUnavailable, "document tracking not configured")
	}

	path := strings.TrimSpace(c.FormValue("path"))
	if path == "" {
		return c.String(http.StatusBadRequest, "path required")
	}

	ctx := c.Request().Context()

	exists, err := s.documents.DocumentExists(ctx, path)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if exists {
		return c.String(http.StatusConflict, "document already tracked")
	}

	if err := s.documents.AddDocument(ctx, path); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	s.sse.Broadcast("document added: " + path)
	return s.getDocuments(c)
}

func (s *Server) removeDocument(c echo.Context) error {
	if s.documents == nil {
		return c.String(http.StatusServiceUnavailable, "document tracking not configured")
	}

	path := strings.TrimSpace(c.QueryParam("path"))
	if path == "" {
		return c.String(http.StatusBadRequest, "path required")
	}

	if err := s.documents.RemoveDocument(c.Request().Context(), path); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	s.sse.Broadcast("document removed: " + path)
	return s.getDocuments(c)
}

func (s *Server) events(c echo.Context) error {
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")

	ch := s.sse.Subscribe()
	defer s.sse.Unsubscribe(ch)

	for {
		select {
		case msg := <-ch:
			fmt.Fprintf(c.Response(), "event: update\ndata: %s\n\n", msg)
			c.Response().Flush()
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
