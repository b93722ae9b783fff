// Package api exposes the dashboard over HTTP: the records feed with
// its color assignment, the edit endpoint, cache refresh, summary
// statistics and a QR code for sharing the current view.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"dog-walking-map/pkg/colorize"
	"dog-walking-map/pkg/dispatch"
	"dog-walking-map/pkg/logger"
	"dog-walking-map/pkg/records"
	"dog-walking-map/pkg/tablecache"
)

// Handler wires the table cache and edit dispatcher so HTTP routes can
// stay small and focused on translating query parameters into the
// building blocks behind the scenes.
type Handler struct {
	Cache *tablecache.Cache
	Logf  func(string, ...any)
}

// NewHandler constructs a Handler.  Logf is optional; pass nil if
// logging is not required.
func NewHandler(cache *tablecache.Cache, logf func(string, ...any)) *Handler {
	return &Handler{Cache: cache, Logf: logf}
}

// Register attaches API routes to the provided mux.  We keep the method
// tiny and declarative: it simply wires URLs to helpers.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api", h.handleOverview)
	mux.HandleFunc("/api/records", h.handleRecords)
	mux.HandleFunc("/api/edit", h.handleEdit)
	mux.HandleFunc("/api/refresh", h.handleRefresh)
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/qrpng", h.handleQRPNG)
}

// handleOverview publishes machine-readable docs so developers know
// which endpoints exist without reading the source.
func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview := struct {
		Endpoints map[string]any `json:"endpoints"`
	}{
		Endpoints: map[string]any{
			"records": map[string]any{
				"method":      "GET",
				"path":        "/api/records",
				"query":       []string{"search", "color_by"},
				"description": "Returns the filtered table plus the marker color for each distinct category value.",
			},
			"edit": map[string]any{
				"method":      "POST",
				"path":        "/api/edit",
				"body":        `{"row": <feed row>, "fields": {"<column name>": "<value>"}}`,
				"description": "Writes fields back to the sheet. Partial success is reported, not rolled back.",
			},
			"refresh": map[string]any{
				"method":      "POST",
				"path":        "/api/refresh",
				"description": "Discards the cached table so the next load re-reads the sheet.",
			},
			"stats": map[string]any{
				"method":      "GET",
				"path":        "/api/stats",
				"description": "Summary metrics: locations, dogs, districts.",
			},
			"qr": map[string]any{
				"method":      "GET",
				"path":        "/qrpng",
				"query":       []string{"search", "color_by", "size"},
				"description": "PNG QR code pointing at the current map view.",
			},
		},
	}
	h.respondJSON(w, overview)
}

// colorByField maps the selector values the UI sends to the column
// names the records package understands.  Unknown values fall back to
// the default selector rather than erroring.
func colorByField(v string) string {
	switch v {
	case "district", "District":
		return "District"
	case "dogs", "Number of dogs":
		return "Number of dogs"
	default:
		return "Filter"
	}
}

// handleRecords serves the normalized table filtered by the search box,
// along with the color assignment for the distinct values of the
// selected category in first-seen order.
func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	search := q.Get("search")
	colorBy := colorByField(q.Get("color_by"))

	snap, message := h.snapshot(ctx)
	display := snap.Table.Search(search)
	values := display.DistinctValues(colorBy)

	resp := struct {
		Search   string            `json:"search"`
		ColorBy  string            `json:"colorBy"`
		Total    int               `json:"total"`
		Showing  int               `json:"showing"`
		HasStore bool              `json:"hasStore"`
		Records  records.Table     `json:"records"`
		Colors   map[string]string `json:"colors"`
		Message  string            `json:"message,omitempty"`
	}{
		Search:   search,
		ColorBy:  colorBy,
		Total:    len(snap.Table),
		Showing:  len(display),
		HasStore: snap.Store != nil,
		Records:  display,
		Colors:   colorize.Assign(values),
		Message:  message,
	}
	h.respondJSON(w, resp)
}

// handleEdit applies one form submission.  The response always carries
// both counts so a partial write is visible to the user.
func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	var req struct {
		Row    int               `json:"row"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad edit request", http.StatusBadRequest)
		return
	}

	snap, _ := h.snapshot(ctx)

	editID := logger.NewEditID()
	logger.Begin(editID)
	updated, err := dispatch.Apply(ctx, snap.Store, dispatch.Request{Row: req.Row, Fields: req.Fields},
		func(format string, v ...any) { logger.Append(editID, format, v...) })
	if err != nil {
		logger.FlushError(editID, err)
		h.respondJSONStatus(w, http.StatusServiceUnavailable, struct {
			Error string `json:"error"`
		}{Error: err.Error()})
		return
	}

	// A successful write makes the cached table stale; invalidate so
	// the next load reflects the edit.
	if updated > 0 {
		if err := h.Cache.Invalidate(ctx); err != nil {
			h.logf("cache invalidate after edit: %v", err)
		}
		logger.Success(editID, fmt.Sprintf("row %d: %d of %d fields written", req.Row, updated, len(req.Fields)))
	} else {
		logger.FlushError(editID, fmt.Errorf("row %d: no fields written", req.Row))
	}

	resp := struct {
		EditID    string `json:"editID"`
		Requested int    `json:"requested"`
		Updated   int    `json:"updated"`
	}{
		EditID:    editID,
		Requested: len(req.Fields),
		Updated:   updated,
	}
	h.respondJSON(w, resp)
}

// handleRefresh is the manual refresh control: it discards the cache so
// the next records request re-reads the sheet.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	if err := h.Cache.Invalidate(r.Context()); err != nil {
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}
	h.respondJSON(w, struct {
		Status string `json:"status"`
	}{Status: "refreshed"})
}

// handleStats serves the dashboard footer metrics.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, message := h.snapshot(r.Context())
	resp := struct {
		records.Stats
		Message string `json:"message,omitempty"`
	}{Stats: snap.Table.Stats(), Message: message}
	h.respondJSON(w, resp)
}

// handleQRPNG renders a QR code that reopens the current map view on
// another device.  The URL always points at this host; only the search
// and color selector travel in the query string.
func (h *Handler) handleQRPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size := clampInt(parseIntDefault(q.Get("size"), 256), 64, 1024)

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	share := url.URL{Scheme: scheme, Host: r.Host, Path: "/"}
	params := url.Values{}
	if s := q.Get("search"); s != "" {
		params.Set("search", s)
	}
	if c := q.Get("color_by"); c != "" {
		params.Set("color_by", c)
	}
	share.RawQuery = params.Encode()

	png, err := qrcode.Encode(share.String(), qrcode.Medium, size)
	if err != nil {
		http.Error(w, "qr encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="qr.png"`)
	_, _ = w.Write(png)
}

// snapshot loads the current table, translating a load failure into the
// "no data available" shape: empty table, nil store, human-readable
// message.  The failure never propagates as a request error.
func (h *Handler) snapshot(ctx context.Context) (tablecache.Snapshot, string) {
	snap, err := h.Cache.Get(ctx)
	if err != nil {
		h.logf("load sheet data: %v", err)
		return tablecache.Snapshot{}, "no data available: " + err.Error()
	}
	return snap, ""
}

func (h *Handler) logf(format string, v ...any) {
	if h.Logf != nil {
		h.Logf(format, v...)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, payload any) {
	h.respondJSONStatus(w, http.StatusOK, payload)
}

func (h *Handler) respondJSONStatus(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func parseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
