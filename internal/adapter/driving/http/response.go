package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/peerportal/internal/application"
	"github.com/ericfisherdev/peerportal/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

const (
	statusProceed  = "proceed"
	statusRedirect = "redirect"
)

// SessionResponse is the JSON body of an admitted session check.
type SessionResponse struct {
	Status      string             `json:"status"`
	Role        string             `json:"role"`
	RoleLabel   string             `json:"role_label"`
	UserID      string             `json:"user_id"`
	DisplayName string             `json:"display_name"`
	Nav         []NavEntryResponse `json:"nav"`
}

// NavEntryResponse is one navigation link.
type NavEntryResponse struct {
	Target string `json:"target"`
	Label  string `json:"label"`
}

// RedirectResponse is the JSON body of a refused session check.
type RedirectResponse struct {
	Status     string `json:"status"`
	RedirectTo string `json:"redirect_to"`
}

// HealthResponse is the JSON representation of a health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func newRedirectResponse(target string) RedirectResponse {
	return RedirectResponse{Status: statusRedirect, RedirectTo: target}
}

func toSessionResponse(snap model.CredentialSnapshot) SessionResponse {
	entries := application.ResolveNav(snap.Role)
	nav := make([]NavEntryResponse, 0, len(entries))
	for _, e := range entries {
		nav = append(nav, NavEntryResponse{Target: e.Target, Label: e.Label})
	}

	return SessionResponse{
		Status:      statusProceed,
		Role:        string(snap.Role),
		RoleLabel:   application.RoleLabel(snap.Role),
		UserID:      snap.UserID,
		DisplayName: snap.DisplayName,
		Nav:         nav,
	}
}
