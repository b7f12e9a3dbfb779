// README: Run report handlers: list, get, summary, leaderboard and on-demand runs.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sharetaxi/internal/config"
	"sharetaxi/internal/experiment"
	"sharetaxi/internal/report"
)

type RunStore interface {
	SaveRun(ctx context.Context, run *report.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*report.Run, error)
	ListRuns(ctx context.Context, limit int) ([]report.Header, error)
}

type RunCache interface {
	Put(ctx context.Context, h report.Header) error
	Get(ctx context.Context, id uuid.UUID) (*report.Header, error)
	Top(ctx context.Context, n int) ([]report.Header, error)
}

type Runner func(ctx context.Context, c experiment.Case) (*report.Run, error)

type RunHandler struct {
	store  RunStore
	cache  RunCache
	run    Runner
	base   config.Config
	limits Limits
}

// Limits bound what a single API call may ask for.
// The route search is combinatorial in NodeLimit, so a single tick is only
// bounded when MaxNodeLimit is set.
type Limits struct {
	MaxTicks     int
	MaxRequests  int
	MaxVehicles  int
	MaxNodeLimit int
	MaxCapacity  int
	MaxList      int
}

// NewRunHandler serves runs from store. cache may be nil, which disables the
// leaderboard and summary caching.
func NewRunHandler(store RunStore, cache RunCache, run Runner, base config.Config, limits Limits) *RunHandler {
	return &RunHandler{store: store, cache: cache, run: run, base: base, limits: limits}
}

func (h *RunHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20, h.limits.MaxList)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid limit")
		return
	}
	runs, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		log.Printf("[API] list runs: %v", err)
		writeRunError(c, err)
		return
	}
	if runs == nil {
		runs = []report.Header{}
	}
	writeJSON(c, http.StatusOK, gin.H{"runs": runs})
}

func (h *RunHandler) Get(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	run, err := h.store.GetRun(c.Request.Context(), id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, run)
}

// Summary answers from the cache when it can and refills it on a miss.
func (h *RunHandler) Summary(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if h.cache != nil {
		hdr, err := h.cache.Get(ctx, id)
		if err == nil {
			writeJSON(c, http.StatusOK, hdr)
			return
		}
		if !errors.Is(err, report.ErrNotFound) {
			log.Printf("[API] cache get %s: %v", id, err)
		}
	}

	run, err := h.store.GetRun(ctx, id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Put(ctx, run.Header); err != nil {
			log.Printf("[API] cache put %s: %v", id, err)
		}
	}
	writeJSON(c, http.StatusOK, run.Header)
}

func (h *RunHandler) Top(c *gin.Context) {
	if h.cache == nil {
		writeError(c, http.StatusServiceUnavailable, "leaderboard unavailable")
		return
	}
	n, err := queryInt(c, "n", 10, h.limits.MaxList)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid n")
		return
	}
	runs, err := h.cache.Top(c.Request.Context(), n)
	if err != nil {
		log.Printf("[API] leaderboard: %v", err)
		writeRunError(c, err)
		return
	}
	if runs == nil {
		runs = []report.Header{}
	}
	writeJSON(c, http.StatusOK, gin.H{"runs": runs})
}

type createRunReq struct {
	Label     string  `json:"label"`
	Seed      *int64  `json:"seed"`
	Ticks     *int    `json:"ticks"`
	GridX     *int    `json:"grid_x"`
	GridY     *int    `json:"grid_y"`
	Vehicles  *int    `json:"vehicles"`
	Requests  *int    `json:"requests"`
	Capacity  *int    `json:"capacity"`
	Sharing   *bool   `json:"sharing"`
	NodeLimit *int    `json:"node_limit"`
	TimeOut   *int    `json:"timeout"`
	Shuffle   *bool   `json:"shuffle"`
	Idle      *string `json:"idle"`
}

func (h *RunHandler) Create(c *gin.Context) {
	var req createRunReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cfg, err := h.apply(req)
	if err != nil {
		writeRunError(c, err)
		return
	}

	ctx := c.Request.Context()
	run, err := h.run(ctx, experiment.Case{Label: req.Label, Config: cfg})
	if err != nil {
		log.Printf("[API] run %q: %v", req.Label, err)
		writeRunError(c, err)
		return
	}
	if err := h.store.SaveRun(ctx, run); err != nil {
		log.Printf("[API] save run %s: %v", run.ID, err)
		writeRunError(c, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Put(ctx, run.Header); err != nil {
			log.Printf("[API] cache put %s: %v", run.ID, err)
		}
	}
	writeJSON(c, http.StatusCreated, run.Header)
}

// apply overlays the request on the base config and enforces the API limits.
func (h *RunHandler) apply(req createRunReq) (config.Config, error) {
	cfg := h.base
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&cfg.Sim.Ticks, req.Ticks)
	setInt(&cfg.Sim.GridX, req.GridX)
	setInt(&cfg.Sim.GridY, req.GridY)
	setInt(&cfg.Sim.Vehicles, req.Vehicles)
	setInt(&cfg.Sim.Requests, req.Requests)
	setInt(&cfg.Sim.Capacity, req.Capacity)
	setInt(&cfg.Sim.NodeLimit, req.NodeLimit)
	setInt(&cfg.Sim.TimeOut, req.TimeOut)
	if req.Seed != nil {
		cfg.Sim.Seed = *req.Seed
	}
	if req.Sharing != nil {
		cfg.Sim.Sharing = *req.Sharing
	}
	if req.Shuffle != nil {
		cfg.Sim.Shuffle = *req.Shuffle
	}
	if req.Idle != nil {
		cfg.Sim.Idle = *req.Idle
	}
	// Runs started over the API never abort on invariant violations.
	cfg.Sim.Strict = false

	switch {
	case h.limits.MaxTicks > 0 && cfg.Sim.Ticks > h.limits.MaxTicks:
		return cfg, fmt.Errorf("%w: ticks above %d", errBadRequest, h.limits.MaxTicks)
	case h.limits.MaxRequests > 0 && cfg.Sim.Requests > h.limits.MaxRequests:
		return cfg, fmt.Errorf("%w: requests above %d", errBadRequest, h.limits.MaxRequests)
	case h.limits.MaxVehicles > 0 && cfg.Sim.Vehicles > h.limits.MaxVehicles:
		return cfg, fmt.Errorf("%w: vehicles above %d", errBadRequest, h.limits.MaxVehicles)
	case h.limits.MaxNodeLimit > 0 && cfg.Sim.NodeLimit > h.limits.MaxNodeLimit:
		return cfg, fmt.Errorf("%w: node limit above %d", errBadRequest, h.limits.MaxNodeLimit)
	case h.limits.MaxCapacity > 0 && cfg.Sim.Capacity > h.limits.MaxCapacity:
		return cfg, fmt.Errorf("%w: capacity above %d", errBadRequest, h.limits.MaxCapacity)
	}
	return cfg, cfg.Validate()
}

func parseRunID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid run id")
		return uuid.Nil, false
	}
	return id, true
}
