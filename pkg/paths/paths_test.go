package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no separators", "public/js", "public/js"},
		{"leading slash", "/public/js", "public/js"},
		{"trailing slash", "public/js/", "public/js"},
		{"both", "/public/js/", "public/js"},
		{"backslashes", "\\public\\js\\", "public\\js"},
		{"empty", "", ""},
		{"only separators", "//", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trim(tt.input))
		})
	}
}

func TestHasTrailingSeparator(t *testing.T) {
	assert.True(t, HasTrailingSeparator("public/js/"))
	assert.True(t, HasTrailingSeparator("public\\js\\"))
	assert.False(t, HasTrailingSeparator("public/js"))
	assert.False(t, HasTrailingSeparator(""))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"backslashes converted", "public\\js\\widget.js", "public/js/widget.js"},
		{"redundant separators", "public//js/./widget.js", "public/js/widget.js"},
		{"dot segments", "public/css/../js/widget.js", "public/js/widget.js"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestProjectRelative(t *testing.T) {
	tests := []struct {
		name string
		abs  string
		root string
		want string
	}{
		{"inside root", "/home/dev/app/public/js/widget.js", "/home/dev/app", "public/js/widget.js"},
		{"root with trailing slash", "/home/dev/app/public", "/home/dev/app/", "public"},
		{"root itself", "/home/dev/app", "/home/dev/app", ""},
		{"outside root", "/tmp/other.js", "/home/dev/app", "tmp/other.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectRelative(tt.abs, tt.root))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "public/js/widget.js", Join("public/", "/js/", "widget.js"))
	assert.Equal(t, "public", Join("", "public", ""))
	assert.Equal(t, "", Join("", "/"))
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth(""))
	assert.Equal(t, 0, Depth("/"))
	assert.Equal(t, 1, Depth("public"))
	assert.Equal(t, 3, Depth("public/js/widget.js"))
}
