package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/cfwatch/cfwatch-data/internal/analytics"
	"github.com/cfwatch/cfwatch-data/internal/api/respond"
	"github.com/cfwatch/cfwatch-data/internal/cache"
	"github.com/cfwatch/cfwatch-data/internal/config"
)

const analyticsCacheKeyPrefix = "analytics:"

// GetAnalytics computes the windowed profile aggregates for one student's
// stored snapshot. Window presets are validated against the configured
// lists; responses are cached with ETags since a snapshot changes at most
// once per sync cycle.
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStudent(w, r)
	if !ok {
		return
	}

	contestDays, ok := windowParam(r, "contestDays", 90, config.ContestWindowsDays)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			fmt.Sprintf("contestDays must be one of %v", config.ContestWindowsDays))
		return
	}
	problemDays, ok := windowParam(r, "problemDays", 30, config.ProblemWindowsDays)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			fmt.Sprintf("problemDays must be one of %v", config.ProblemWindowsDays))
		return
	}

	key := fmt.Sprintf("%s%d:%d:%d", analyticsCacheKeyPrefix, st.ID, contestDays, problemDays)
	if data, etag, hit := h.cache.Get(key); hit {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLAnalytics, true)
		return
	}

	profile := analytics.Compute(st.Snapshot, time.Now().UTC(), analytics.Options{
		ContestWindowDays: contestDays,
		ProblemWindowDays: problemDays,
	})

	data, err := json.Marshal(profile)
	if err != nil {
		slog.Error("encode analytics failed", "id", st.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode analytics")
		return
	}

	etag := h.cache.Set(key, data, cache.TTLAnalytics)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, cache.TTLAnalytics, false)
}

// invalidateAnalytics drops every cached window variant for a student.
func (h *Handler) invalidateAnalytics(id int64) {
	h.cache.InvalidatePrefix(analyticsCacheKeyPrefix + strconv.FormatInt(id, 10) + ":")
}

// windowParam parses a day-window query parameter and validates it against
// the allowed presets. Absent means the default; ok=false means the value
// was present but not a preset.
func windowParam(r *http.Request, name string, fallback int, allowed []int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || !slices.Contains(allowed, n) {
		return 0, false
	}
	return n, true
}
