package svg_test

import (
	"testing"

	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/svg"
	"github.com/stretchr/testify/require"
)

const multicolorSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 16">` +
	`<path d="M1 1h2" fill="#FF0000"/>` +
	`<path d="M3 3h4" fill="#00FF00" stroke="#0000FF"/>` +
	`<path fill="none" d="M5 5h6"/>` +
	`<rect fill="url(#grad)" width="4" height="4"/>` +
	`</svg>`

func TestParse_RejectsGarbage(t *testing.T) {
	_, err := svg.Parse([]byte("not xml <<<"))
	require.ErrorIs(t, err, errors.ErrValidation)

	_, err = svg.Parse([]byte(""))
	require.ErrorIs(t, err, errors.ErrValidation)

	_, err = svg.Parse([]byte(`<div>nope</div>`))
	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestViewBox(t *testing.T) {
	tests := []struct {
		name          string
		doc           string
		width, height float64
	}{
		{"explicit", `<svg viewBox="0 0 32 16"/>`, 32, 16},
		{"comma separated", `<svg viewBox="0,0,48,48"/>`, 48, 48},
		{"absent defaults", `<svg/>`, 24, 24},
		{"malformed defaults", `<svg viewBox="0 0 banana"/>`, 24, 24},
		{"zero size defaults", `<svg viewBox="0 0 0 0"/>`, 24, 24},
		{"fractional", `<svg viewBox="0 0 23.5 11.75"/>`, 23.5, 11.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := svg.Parse([]byte(tt.doc))
			require.NoError(t, err)
			w, h := doc.ViewBox()
			require.Equal(t, tt.width, w)
			require.Equal(t, tt.height, h)
		})
	}
}

func TestPaths(t *testing.T) {
	doc, err := svg.Parse([]byte(multicolorSVG))
	require.NoError(t, err)

	paths := doc.Paths()
	require.Len(t, paths, 3)
	require.Equal(t, "M1 1h2", paths[0].D)
	require.Equal(t, "#FF0000", paths[0].Fill)
	require.Equal(t, "M3 3h4", paths[1].D)
	require.Equal(t, "none", paths[2].Fill)
}

func TestExtractColors(t *testing.T) {
	doc, err := svg.Parse([]byte(multicolorSVG))
	require.NoError(t, err)

	// "none" and url(...) are skipped; document order preserved.
	require.Equal(t, []string{"#FF0000", "#00FF00", "#0000FF"}, doc.ExtractColors())
}

func TestExtractColors_Dedup(t *testing.T) {
	doc, err := svg.Parse([]byte(
		`<svg><path fill="#111111" d="M0 0"/><path fill="#111111" d="M1 1"/></svg>`))
	require.NoError(t, err)
	require.Equal(t, []string{"#111111"}, doc.ExtractColors())
}

func TestRecolor_RoundTrip(t *testing.T) {
	doc, err := svg.Parse([]byte(multicolorSVG))
	require.NoError(t, err)

	doc.Recolor(map[string]string{
		"#FF0000": "#ABCDEF",
		"#0000FF": "#123456",
	})

	out, err := doc.Encode()
	require.NoError(t, err)

	reparsed, err := svg.Parse(out)
	require.NoError(t, err)
	require.Equal(t, []string{"#ABCDEF", "#00FF00", "#123456"}, reparsed.ExtractColors())

	// Untouched structure survives: same path data, same viewBox.
	require.Equal(t, doc.Paths(), reparsed.Paths())
	w, h := reparsed.ViewBox()
	require.Equal(t, 32.0, w)
	require.Equal(t, 16.0, h)
}

func TestRecolor_LeavesNonColorPaintsAlone(t *testing.T) {
	doc, err := svg.Parse([]byte(multicolorSVG))
	require.NoError(t, err)

	doc.Recolor(map[string]string{"none": "#FFFFFF", "url(#grad)": "#FFFFFF"})
	require.Equal(t, []string{"#FF0000", "#00FF00", "#0000FF"}, doc.ExtractColors())
}
