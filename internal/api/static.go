package api

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var homePage []byte

// home serves the static landing page and doubles as the 404 fallback for
// every path no other route claimed.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		notFound(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(homePage)
}
