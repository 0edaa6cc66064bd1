package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPaths_Formats(t *testing.T) {
	want := []string{"bibxml/reference.RFC.2119.xml", "bibxml3/reference.I-D.foo.xml"}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "paths.json", `["bibxml/reference.RFC.2119.xml", "/bibxml3/reference.I-D.foo.xml"]`},
		{"yaml", "paths.yaml", "- bibxml/reference.RFC.2119.xml\n- bibxml3/reference.I-D.foo.xml\n"},
		{"lines", "paths.txt", "# index\nbibxml/reference.RFC.2119.xml\n\n  bibxml3/reference.I-D.foo.xml  \n"},
		{"sniffed json", "paths", `  ["bibxml/reference.RFC.2119.xml","bibxml3/reference.I-D.foo.xml"]`},
		{"sniffed lines", "paths", "bibxml/reference.RFC.2119.xml\nbibxml3/reference.I-D.foo.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			got, err := LoadPaths(context.Background(), path, nil)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadPaths_Deduplicates(t *testing.T) {
	path := writeFile(t, "paths.txt", "a/x.xml\nb/y.xml\na/x.xml\n/a/x.xml/\n")
	got, err := LoadPaths(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/x.xml", "b/y.xml"}, got)
}

func TestLoadPaths_DropsEmptySegments(t *testing.T) {
	path := writeFile(t, "paths.txt", "bibxml//reference.RFC.2119.xml\n//\n/bibxml3/x.xml\n")
	got, err := LoadPaths(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"bibxml/reference.RFC.2119.xml", "bibxml3/x.xml"}, got)
}

func TestLoadPaths_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPaths(context.Background(), filepath.Join(t.TempDir(), "nope.json"), nil)
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		path := writeFile(t, "paths.txt", "\n# nothing\n")
		_, err := LoadPaths(context.Background(), path, nil)
		assert.ErrorIs(t, err, ErrEmptySource)
	})

	t.Run("bad json", func(t *testing.T) {
		path := writeFile(t, "paths.json", `{"not": "a list"}`)
		_, err := LoadPaths(context.Background(), path, nil)
		assert.Error(t, err)
	})
}

func TestLoadPaths_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`["bibxml/reference.RFC.2119.xml"]`))
	}))
	defer srv.Close()

	got, err := LoadPaths(context.Background(), srv.URL+"/index.json?v=1", srv.Client())
	require.NoError(t, err)
	assert.Equal(t, []string{"bibxml/reference.RFC.2119.xml"}, got)

	_, err = LoadPaths(context.Background(), srv.URL+"/missing.json", srv.Client())
	assert.Error(t, err)
}
