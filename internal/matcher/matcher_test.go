package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebP(t *testing.T) {
	m := WebP()

	tests := []struct {
		path string
		want bool
	}{
		{"/pics/cat.webp", true},
		{"/pics/cat.WebP", true},
		{"/pics/cat.WEBP", true},
		{"cat.webp", true},
		{"/pics/archive.2024.webp", true},
		{"/pics/cat.png", false},
		{"/pics/cat.jpeg", false},
		{"/pics/cat.jpg", false},
		{"/pics/cat.webp.part", false},
		{"/pics/cat.webpx", false},
		{"/pics/webp", false},
		{"/pics/.webp", false},
		{"/pics.webp/cat.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New("[")
	require.Error(t, err)
}

func TestNew_MultiplePatterns(t *testing.T) {
	m, err := New("*.webp", "*.PNG")
	require.NoError(t, err)

	assert.True(t, m.Match("a.png"))
	assert.True(t, m.Match("a.Webp"))
	assert.False(t, m.Match("a.gif"))
}
