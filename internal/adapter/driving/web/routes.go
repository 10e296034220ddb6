package web

import (
	"io/fs"
	"net/http"

	"github.com/ericfisherdev/peerportal/internal/application"
	"github.com/ericfisherdev/peerportal/internal/domain/model"
)

// RegisterRoutes registers all web routes on the provided mux.
// Every navigation target is served as a guarded page admitting the roles
// whose navigation lists it. Static assets are served at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler, backend http.Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	for _, role := range []model.Role{model.RoleStudent, model.RoleTeacher, model.RoleMaster} {
		for _, entry := range application.ResolveNav(role) {
			roles := application.PageRoles(entry.Target)
			mux.Handle("GET "+entry.Target, h.RequireRoles(roles, h.Page(entry.Label)))
		}
	}

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET "+model.LoginPath, h.LoginForm)
	mux.HandleFunc("POST "+model.LoginPath, h.Login)
	mux.HandleFunc("POST /logout", h.Logout)

	if backend != nil {
		mux.Handle(BackendPrefix, backend)
	}
}
