package sessioncookie

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_WritesSessionCookie(t *testing.T) {
	m := New("sid", true)
	rec := httptest.NewRecorder()

	id := NewID()
	m.Set(rec, id)

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, "/", cookies[0].Path)
}

func TestNewID_NeverRepeats(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewID()
		require.False(t, seen[id], id)
		seen[id] = true
	}
}

func TestPeek(t *testing.T) {
	m := New("sid", false)
	existing := uuid.NewString()

	tests := []struct {
		name   string
		value  string
		wantID string
		wantOK bool
	}{
		{name: "well-formed id", value: existing, wantID: existing, wantOK: true},
		{name: "empty", value: "", wantOK: false},
		{name: "not a uuid", value: "not-a-uuid", wantOK: false},
		{name: "path traversal", value: "../../etc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "sid", Value: tt.value})

			id, ok := m.Peek(req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestPeek_NoCookie(t *testing.T) {
	_, ok := New("sid", false).Peek(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := IDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := IDFromContext(WithID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}
