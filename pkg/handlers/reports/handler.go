// Package reports exposes the review reports over HTTP, rendered in the
// JSON output encoding.
package reports

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/russellb/gerrymander/pkg/report"
	"github.com/russellb/gerrymander/pkg/services/config"
)

// Handler serves report endpoints.
type Handler struct {
	client report.Querier
	cfg    *config.Config
}

// NewHandler returns a report handler backed by the given query
// collaborator and tool configuration.
func NewHandler(client report.Querier, cfg *config.Config) *Handler {
	return &Handler{client: client, cfg: cfg}
}

func (h *Handler) env(logger *zerolog.Logger) *report.Env {
	return &report.Env{Logger: *logger}
}

// projects falls back to the configured default project list.
func (h *Handler) projects(r *http.Request) []string {
	if projects := r.URL.Query()["project"]; len(projects) > 0 {
		return projects
	}
	return h.cfg.Projects
}

func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, g report.Generator) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	output, err := g.Generate(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("report generation failed")
		http.Error(w, "report generation failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := report.Render(output, report.ModeJSON, w); err != nil {
		logger.Error().Err(err).Msg("failed to render report")
	}
}

// GetChanges serves the change-listing report.
func (h *Handler) GetChanges(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	q := r.URL.Query()

	rep, err := report.NewChangesReport(h.env(logger), h.client, report.ChangesOptions{
		Projects:  h.projects(r),
		Owners:    q["owner"],
		Status:    q["status"],
		Messages:  q["message"],
		Branches:  q["branch"],
		Reviewers: q["reviewer"],
		Files:     q["file"],
		RawQuery:  q.Get("rawquery"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if limit := intParam(r, "limit"); limit > 0 {
		rep.SetDataLimit(limit)
	}
	h.serve(w, r, rep)
}

// GetReviewStats serves the reviewer vote-statistics report.
func (h *Handler) GetReviewStats(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	rep, err := report.NewPatchReviewStats(h.env(logger), h.client, report.PatchReviewStatsOptions{
		Projects:   h.projects(r),
		MaxAgeDays: intParam(r, "days"),
		Teams:      h.cfg.Teams,
		Bots:       h.cfg.Bots,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.serve(w, r, rep)
}

// GetOpenStats serves the open-review wait-time report.
func (h *Handler) GetOpenStats(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	rep, err := report.NewOpenReviewStats(h.env(logger), h.client, report.OpenReviewStatsOptions{
		Projects: h.projects(r),
		Branch:   r.URL.Query().Get("branch"),
		Days:     intParam(r, "days"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.serve(w, r, rep)
}
