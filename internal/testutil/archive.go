// Package testutil builds zip fixtures and served archives for tests.
package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

type Entry struct {
	Name string
	Body string
	Mode os.FileMode
}

func Dir(name string) Entry {
	return Entry{Name: name, Mode: os.ModeDir | 0o755}
}

func File(name, body string) Entry {
	return Entry{Name: name, Body: body, Mode: 0o644}
}

// BuildZip returns a deflated zip holding entries in order.
func BuildZip(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, e := range entries {
		header := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		header.SetMode(e.Mode)
		if e.Mode.IsDir() {
			header.Method = zip.Store
		}

		fw, err := w.CreateHeader(header)
		require.NoError(t, err)
		if !e.Mode.IsDir() {
			_, err = fw.Write([]byte(e.Body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

// WriteZip writes BuildZip output into a fresh temp dir and returns its path.
func WriteZip(t testing.TB, entries ...Entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.zip")
	require.NoError(t, os.WriteFile(path, BuildZip(t, entries...), 0o644))
	return path
}

// ArchiveServer serves body with status on every path and counts requests.
type ArchiveServer struct {
	*httptest.Server
	requests atomic.Int64
}

func NewArchiveServer(t testing.TB, status int, body []byte) *ArchiveServer {
	t.Helper()

	s := &ArchiveServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		w.Header().Set("Content-Type", "application/zip")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *ArchiveServer) Requests() int64 {
	return s.requests.Load()
}

// ListFiles returns every regular file under root, relative and slash separated.
func ListFiles(t testing.TB, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)

	sort.Strings(files)
	return files
}
