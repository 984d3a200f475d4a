package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestReadList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeFile(t, dir, "list.txt", "\n# comment\n a.csv\n   # indented\nb.csv\n\n")

	got, err := ReadList(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, got)

	_, err = ReadList(filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := writeFile(t, dir, "part-b.csv", "x\n")
	a := writeFile(t, dir, "part-a.csv", "x\n")
	list := writeFile(t, dir, "inputs.txt", "# extra inputs\npart-a.csv\n/abs/other.csv\n")

	tests := []struct {
		name     string
		pattern  string
		listFile string
		want     []string
		wantErr  bool
	}{
		{name: "plain_path", pattern: a, want: []string{a}},
		{name: "glob_sorted", pattern: filepath.Join(dir, "part-*.csv"), want: []string{a, b}},
		{name: "list_relative_to_list_dir", listFile: list, want: []string{a, "/abs/other.csv"}},
		{name: "glob_then_list", pattern: b, listFile: list, want: []string{b, a, "/abs/other.csv"}},
		{name: "no_match", pattern: filepath.Join(dir, "*.json"), wantErr: true},
		{name: "nothing_configured", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.pattern, tt.listFile)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
