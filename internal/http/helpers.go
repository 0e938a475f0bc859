package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// failMsg is the {ok:false,msg} envelope every domain failure uses.
func failMsg(msg string) map[string]any {
	return map[string]any{"ok": false, "msg": msg}
}

func okResponse() map[string]any {
	return map[string]any{"ok": true}
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, failMsg("Invalid request body."))
		return false
	}
	return true
}

// writeStoreError logs the fault and returns a 500. Domain errors should be
// mapped to {ok:false,msg} before reaching here.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Store operation failed",
		"url", r.URL.Path, "error", err)
	writeJSONStatus(w, http.StatusInternalServerError, failMsg("Internal error."))
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt64(r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryYear falls back to the current year when the parameter is absent or
// malformed.
func queryYear(r *http.Request) int {
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 {
		return y
	}
	return time.Now().Year()
}
