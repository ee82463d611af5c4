// control/http.go
// Author: momentics <momentics@gmail.com>
//
// HTTP surface for metrics scraping and debug state.

package control

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler routes GET /metrics to gatherer and GET /debug/state to probes.
// Either may be nil, in which case its route is not mounted.
func NewHandler(gatherer prometheus.Gatherer, probes *DebugProbes) http.Handler {
	r := chi.NewRouter()
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	if probes != nil {
		r.Get("/debug/state", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(probes.DumpState()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		})
	}
	return r
}
