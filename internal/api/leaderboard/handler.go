package leaderboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	boarddomain "perception/internal/domain/leaderboard"
	boardservice "perception/internal/services/leaderboard"
	"perception/pkg/errors"
	"perception/pkg/logger"
)

// Handler serves the leaderboard API
type Handler struct {
	service      *boardservice.Service
	displayLimit int
	log          *logger.Logger
}

// New creates the leaderboard API handler
func New(service *boardservice.Service, displayLimit int) *Handler {
	return &Handler{
		service:      service,
		displayLimit: displayLimit,
		log:          logger.Get().With("component", "leaderboard_api"),
	}
}

// boardResponse is the wire shape of GET /api/leaderboard
type boardResponse struct {
	Side        boarddomain.Side    `json:"side"`
	WindowStart time.Time           `json:"windowStart"`
	WindowEnd   time.Time           `json:"windowEnd"`
	BuiltAt     time.Time           `json:"builtAt"`
	Total       int                 `json:"total"`
	Entries     []boarddomain.Entry `json:"entries"`
}

// HandleBoard serves one ranked side with offset/limit pagination
func (h *Handler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	side, ok := h.parseSide(w, r)
	if !ok {
		return
	}

	offset := parseIntParam(r, "offset", 0)
	limit := parseIntParam(r, "limit", h.displayLimit)

	snapshot, err := h.service.Latest(r.Context())
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	board := snapshot.Board(side)
	entries := board.Page(offset, limit)
	if entries == nil {
		entries = []boarddomain.Entry{}
	}

	writeJSON(w, http.StatusOK, boardResponse{
		Side:        side,
		WindowStart: snapshot.WindowStart,
		WindowEnd:   snapshot.WindowEnd,
		BuiltAt:     snapshot.BuiltAt,
		Total:       board.Total,
		Entries:     entries,
	})
}

// HandlePodium serves the top three of one side
func (h *Handler) HandlePodium(w http.ResponseWriter, r *http.Request) {
	side, ok := h.parseSide(w, r)
	if !ok {
		return
	}

	snapshot, err := h.service.Latest(r.Context())
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	board := snapshot.Board(side)
	podium := board.Podium()
	if podium == nil {
		podium = []boarddomain.Entry{}
	}

	writeJSON(w, http.StatusOK, boardResponse{
		Side:        side,
		WindowStart: snapshot.WindowStart,
		WindowEnd:   snapshot.WindowEnd,
		BuiltAt:     snapshot.BuiltAt,
		Total:       board.Total,
		Entries:     podium,
	})
}

// HandleRefresh forces a full rebuild from a fresh feed load. This backs the
// retry button: a failed load leaves the old snapshot alone and the caller
// simply tries again.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Rebuild(r.Context())
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"builtAt":        snapshot.BuiltAt,
		"recordsFetched": snapshot.RecordsFetched,
		"recordsMatched": snapshot.RecordsMatched,
		"bulls":          snapshot.Bulls.Total,
		"bears":          snapshot.Bears.Total,
	})
}

// parseSide reads the side query param, defaulting to bulls
func (h *Handler) parseSide(w http.ResponseWriter, r *http.Request) (boarddomain.Side, bool) {
	raw := r.URL.Query().Get("side")
	if raw == "" {
		return boarddomain.SideBulls, true
	}

	side := boarddomain.Side(raw)
	if !side.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "side must be bulls or bears",
		})
		return "", false
	}
	return side, true
}

// writeLoadError maps pipeline failures onto the API surface. Every feed
// failure collapses into one error kind; the upstream detail goes to the log,
// not to the client.
func (h *Handler) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errors.ErrFeedUnavailable) {
		h.log.Warnw("Serving feed failure to client", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "feed load failed",
		})
		return
	}

	h.log.Errorf("Leaderboard request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal error",
	})
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
