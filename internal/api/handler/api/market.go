// internal/api/handler/api/market.go
package api

import (
	"context"
	"net/http"

	"github.com/newthinker/folio/internal/api/job"
	"github.com/newthinker/folio/internal/api/response"
	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/core"
	"github.com/newthinker/folio/internal/fetcher"
)

// MarketApp defines the interface needed from app.App.
type MarketApp interface {
	State() app.State
	Home() app.Home
	Statistics() []core.Quote
	Assets() app.Assets
	IsLoading() bool
	LoadStockData(ctx context.Context) fetcher.Result
}

// MarketHandler serves the fetched market state and dashboards.
type MarketHandler struct {
	app  MarketApp
	jobs *job.Store

	// refresh runs a fetch cycle in the background.
	refresh func(func())
}

// NewMarketHandler creates a new market handler. Refreshes run on their
// own goroutine and outlive the triggering request; jobs records them and
// may be nil.
func NewMarketHandler(a MarketApp, jobs *job.Store) *MarketHandler {
	if jobs == nil {
		jobs = job.NewStore(job.DefaultMaxSize, job.DefaultTTL)
	}
	return &MarketHandler{
		app:     a,
		jobs:    jobs,
		refresh: func(fn func()) { go fn() },
	}
}

// RefreshSummary is the result of a completed refresh job.
type RefreshSummary struct {
	Cycle   string `json:"cycle"`
	Date    string `json:"date"`
	Details int    `json:"details"`
	Prices  int    `json:"prices"`
}

func summarize(res fetcher.Result) RefreshSummary {
	s := RefreshSummary{
		Cycle:   res.ID,
		Date:    res.Date,
		Details: len(core.Listed(res.Details)),
	}
	for _, p := range res.Prices {
		if !p.IsEmpty() {
			s.Prices++
		}
	}
	return s
}

// State returns the full observable state.
func (h *MarketHandler) State(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.app.State())
}

// Home returns balance, favorites and popular stocks.
func (h *MarketHandler) Home(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.app.Home())
}

// Statistics returns every listed stock, largest market cap first.
func (h *MarketHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	quotes := h.app.Statistics()
	response.JSON(w, http.StatusOK, map[string]any{
		"quotes": quotes,
		"count":  len(quotes),
	})
}

// Assets returns the holdings summary.
func (h *MarketHandler) Assets(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.app.Assets())
}

// Refresh starts a fetch cycle and returns immediately.
func (h *MarketHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.app.IsLoading() {
		response.JSON(w, http.StatusAccepted, map[string]any{"started": false, "loading": true})
		return
	}

	j := h.jobs.Create("refresh")
	ctx := context.WithoutCancel(r.Context())
	h.refresh(func() {
		h.jobs.Update(j.ID, func(j *job.Job) { j.Status = job.StatusRunning })
		res := h.app.LoadStockData(ctx)
		h.jobs.Update(j.ID, func(j *job.Job) {
			j.Status = job.StatusComplete
			j.Progress = fetcher.ProgressComplete
			j.Result = summarize(res)
		})
	})

	response.JSON(w, http.StatusAccepted, map[string]any{"started": true, "loading": true, "job": j})
}

// Job returns a refresh job by ID.
func (h *MarketHandler) Job(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}
