package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_Basic(t *testing.T) {
	got := RenderMarkdown("評分截止：**週五**")
	assert.Contains(t, got, "<strong>週五</strong>")
}

func TestRenderMarkdown_StripsScript(t *testing.T) {
	got := RenderMarkdown("hello <script>alert(1)</script>")
	assert.NotContains(t, got, "<script>")
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Amy", want: "Amy"},
		{name: "chinese", in: "王小明", want: "王小明"},
		{name: "tags stripped", in: "<b>Amy</b>", want: "Amy"},
		{name: "script dropped", in: "<script>alert(1)</script>Amy", want: "Amy"},
		{name: "img handler dropped", in: `<img src=x onerror=alert(1)>`, want: ""},
		{name: "ampersand kept as text", in: "Tom & Jerry", want: "Tom & Jerry"},
		{name: "entities decoded once", in: "a &lt; b", want: "a < b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}
