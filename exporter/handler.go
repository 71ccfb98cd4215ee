package exporter

import (
	"io"
	"net/http"

	"github.com/golang/glog"
)

// ContentType is the Content-Type of a scrape response.
const ContentType = `text/plain; version=0.0.4; charset=utf-8`

// Renderer is the read side of an exporter: anything that can turn a
// label filter into a scrape body. Both Exporter and Cached implement
// it, so the handler is wired to whichever the process was configured
// with.
type Renderer interface {
	Render(Filter) (string, error)
}

// Handler returns the HTTP handler for the scrape endpoint,
// conventionally mounted at /metrics. The query string encodes an
// optional label filter: each parameter names a label, repeated
// parameters form an accepted value set. Malformed filter parameters
// are ignored rather than failing the scrape, and render errors are
// logged while the salvaged body is still served.
func Handler(r Renderer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := r.Render(FilterFromQuery(req.URL.Query()))
		if err != nil {
			glog.Warningf("Render for %s completed with errors: %v", req.RemoteAddr, err)
		}
		w.Header().Set("Content-Type", ContentType)
		io.WriteString(w, body)
	})
}
