package markdown

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func TestNew(t *testing.T) {
	r, err := New(80, "")
	require.NoError(t, err)
	require.NotNil(t, r)
	require.Equal(t, 80, r.Width())
}

func TestNew_Styles(t *testing.T) {
	for _, style := range []string{"dark", "light", "notty", "ascii"} {
		r, err := New(40, style)
		require.NoError(t, err, "style %s", style)
		require.Equal(t, 40, r.Width())
	}
}

func TestRender_Heading(t *testing.T) {
	r, err := New(80, "")
	require.NoError(t, err)

	result, err := r.Render("# Title\n\nContent")
	require.NoError(t, err)

	stripped := stripANSI(result)
	require.Contains(t, stripped, "Title")
	require.Contains(t, stripped, "Content")
}

func TestRender_List(t *testing.T) {
	r, err := New(80, "")
	require.NoError(t, err)

	result, err := r.Render("- Drag to pan\n- Click to select")
	require.NoError(t, err)

	stripped := stripANSI(result)
	require.Contains(t, stripped, "Drag to pan")
	require.Contains(t, stripped, "Click to select")
}

func TestRender_NoTrailingNewline(t *testing.T) {
	r, err := New(80, "notty")
	require.NoError(t, err)

	result, err := r.Render("Just plain text")
	require.NoError(t, err)
	require.NotEmpty(t, result)
	require.NotEqual(t, '\n', rune(result[len(result)-1]))
}

func TestRender_EmptyString(t *testing.T) {
	r, err := New(80, "")
	require.NoError(t, err)

	result, err := r.Render("")
	require.NoError(t, err)
	require.LessOrEqual(t, len(result), 10)
}
