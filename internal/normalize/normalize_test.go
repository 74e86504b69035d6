package normalize_test

import (
	"testing"

	"github.com/iconvault/iconvault/internal/normalize"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Navigation Arrow", "navigation arrow"},
		{"  Navigation   Arrow  ", "navigation arrow"},
		{"SETTINGS", "settings"},
		{"Straße", "strasse"}, // case folding, not just lowercasing
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, normalize.Name(tt.input), "input %q", tt.input)
	}
}

func TestNamesEqual(t *testing.T) {
	require.True(t, normalize.NamesEqual("Home", "home"))
	require.True(t, normalize.NamesEqual("Home  Icon", "home icon"))
	require.False(t, normalize.NamesEqual("Home", "House"))
}

func TestTags(t *testing.T) {
	got := normalize.Tags([]string{" nav ", "UI", "", "ui", "arrow"})
	require.Equal(t, []string{"nav", "UI", "arrow"}, got)
}
