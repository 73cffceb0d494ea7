package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFormatting(t *testing.T) {
	got, err := Render("## Why cats purr\n\n- **contentment**\n- *healing*\n")
	require.NoError(t, err)

	assert.Contains(t, got.HTML, "<h2")
	assert.Contains(t, got.HTML, "Why cats purr</h2>")
	assert.Contains(t, got.HTML, "<li><strong>contentment</strong></li>")
	assert.Contains(t, got.HTML, "<em>healing</em>")
	assert.Equal(t, "## Why cats purr\n\n- **contentment**\n- *healing*\n", got.Source)
}

func TestRenderStripsScripts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		bad  string
	}{
		{name: "script tag", in: "hi <script>alert(1)</script>", bad: "<script"},
		{name: "event handler", in: `<img src="x" onerror="alert(1)">`, bad: "onerror"},
		{name: "javascript link", in: "[click](javascript:alert(1))", bad: "javascript:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in)
			require.NoError(t, err)
			assert.NotContains(t, got.HTML, tt.bad)
		})
	}
}

func TestRenderLinksAreNoFollow(t *testing.T) {
	got, err := Render("[Go](https://go.dev)")
	require.NoError(t, err)
	assert.Contains(t, got.HTML, `href="https://go.dev"`)
	assert.Contains(t, got.HTML, "nofollow")
}
