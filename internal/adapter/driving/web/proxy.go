package web

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"

	"github.com/ericfisherdev/peerportal/internal/adapter/driving/sessioncookie"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// BackendPrefix is the portal path proxied to the backend's /api tree.
const BackendPrefix = "/backend/"

// NewBackendProxy forwards BackendPrefix requests to <backend>/api/, attaching
// the session's cached credential as the Authorization header. It makes no
// access decision; the backend authorizes each call.
func NewBackendProxy(backend *url.URL, stores driven.SessionStores, cookies sessioncookie.Manager, logger *slog.Logger) http.Handler {
	// url.JoinPath keeps an empty base path relative, which would put
	// "api/..." on the request line.
	api := *backend
	api.Path = path.Join("/", backend.Path, "api")
	api.RawPath = ""

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = "/" + strings.TrimPrefix(pr.In.URL.Path, BackendPrefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(&api)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("backend proxy failed", "path", r.URL.Path, "error", err)
			http.Error(w, "bad gateway", http.StatusBadGateway)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := r.Clone(r.Context())
		out.Header.Del("Authorization")
		out.Header.Del("Cookie")

		if id, ok := cookies.Peek(r); ok {
			snap, err := stores.ForSession(id).Read(r.Context())
			if err != nil {
				logger.Warn("failed to read session for proxy", "error", err)
			} else if snap.Token != "" {
				out.Header.Set("Authorization", snap.AuthorizationHeader())
			}
		}

		proxy.ServeHTTP(w, out)
	})
}
