package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libinstall/internal/testutil"
	apperrors "libinstall/pkg/errors"
)

type workspace struct {
	manifest string
	dest     string
}

func newWorkspace(t *testing.T, manifestBody string) workspace {
	t.Helper()
	dir := t.TempDir()
	manifest := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(manifest, []byte(manifestBody), 0o644))
	return workspace{manifest: manifest, dest: filepath.Join(dir, "libs")}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInstallCommand(t *testing.T) {
	srv := testutil.NewArchiveServer(t, http.StatusOK, testutil.BuildZip(t,
		testutil.File("glad/glad.c", "// glad\n"),
		testutil.File("stb/stb_image.h", "// stb\n"),
	))
	ws := newWorkspace(t, fmt.Sprintf(`{"libraries":{"all":%q}}`, srv.URL))

	for _, args := range [][]string{
		{"--manifest", ws.manifest, "--dest", ws.dest},
		{"install", "--manifest", ws.manifest, "--dest", ws.dest},
	} {
		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Download and unzip completed successfully to %s\n", ws.dest), out)
		assert.Equal(t, []string{"glad/glad.c", "stb/stb_image.h"}, testutil.ListFiles(t, ws.dest))
	}
	assert.EqualValues(t, 2, srv.Requests())
}

func TestInstallCommandURLNotFound(t *testing.T) {
	srv := testutil.NewArchiveServer(t, http.StatusOK, nil)
	ws := newWorkspace(t, `{"name":"game","dependencies":{}}`)

	out, err := execute(t, "--manifest", ws.manifest, "--dest", ws.dest)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("URL not found in %s.\n", ws.manifest), out)
	assert.Contains(t, out, "not found")
	assert.Zero(t, srv.Requests())
	assert.NoDirExists(t, ws.dest)
}

func TestInstallCommandNonSuccessStatus(t *testing.T) {
	srv := testutil.NewArchiveServer(t, http.StatusForbidden, []byte("denied"))
	ws := newWorkspace(t, fmt.Sprintf(`{"libraries":{"all":%q}}`, srv.URL))

	out, err := execute(t, "--manifest", ws.manifest, "--dest", ws.dest)
	require.NoError(t, err)
	assert.Equal(t, "Failed to download the file. Status code: 403\n", out)
	assert.NoDirExists(t, ws.dest)
}

func TestInstallCommandMalformedArchive(t *testing.T) {
	srv := testutil.NewArchiveServer(t, http.StatusOK, []byte("definitely not a zip"))
	ws := newWorkspace(t, fmt.Sprintf(`{"libraries":{"all":%q}}`, srv.URL))

	out, err := execute(t, "--manifest", ws.manifest, "--dest", ws.dest)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, apperrors.ErrInvalidArchive.Code, apperrors.Code(err))
	assert.Empty(t, testutil.ListFiles(t, ws.dest))
}

func TestInstallCommandConfigFileFromEnv(t *testing.T) {
	srv := testutil.NewArchiveServer(t, http.StatusOK, testutil.BuildZip(t, testutil.File("a.txt", "a")))
	ws := newWorkspace(t, fmt.Sprintf(`{"deps":{"bundle":%q}}`, srv.URL))

	configPath := filepath.Join(t.TempDir(), "libinstall.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
manifest:
  path: %s
  field: deps.bundle
install:
  destination: %s
`, ws.manifest, ws.dest)), 0o644))
	t.Setenv("CONFIG_FILE", configPath)

	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "completed successfully")
	assert.FileExists(t, filepath.Join(ws.dest, "a.txt"))
}

func TestInstallCommandBadConfig(t *testing.T) {
	ws := newWorkspace(t, `{}`)

	_, err := execute(t, "--manifest", ws.manifest, "--field", "libraries..all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest.field")
}

func TestURLCommand(t *testing.T) {
	ws := newWorkspace(t, `{"libraries":{"all":"https://example.com/libs.zip"}}`)

	out, err := execute(t, "url", "--manifest", ws.manifest)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/libs.zip\n", out)

	missing := newWorkspace(t, `{"libraries":{}}`)
	out, err = execute(t, "url", "--manifest", missing.manifest)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("URL not found in %s.\n", missing.manifest), out)
}

func TestInstallCommandTransportFailure(t *testing.T) {
	srv := testutil.NewArchiveServer(t, http.StatusOK, nil)
	url := srv.URL
	srv.Close()
	ws := newWorkspace(t, fmt.Sprintf(`{"libraries":{"all":%q}}`, url))

	out, err := execute(t, "--manifest", ws.manifest, "--dest", ws.dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Failed to download the file: "), out)
}

func TestUnreported(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "nil", err: nil},
		{name: "url not found", err: apperrors.ErrURLNotFound},
		{name: "status", err: apperrors.ErrDownloadFailed.WithDetail(apperrors.DetailStatusCode, 500)},
		{name: "wrapped transport", err: fmt.Errorf("get: %w", apperrors.ErrDownloadFailed)},
		{name: "invalid archive", err: apperrors.ErrInvalidArchive, wantErr: true},
		{name: "filesystem", err: apperrors.ErrFilesystem, wantErr: true},
		{name: "unreadable manifest", err: apperrors.ErrManifestUnreadable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := unreported(tt.err)
			if tt.wantErr {
				assert.Equal(t, tt.err, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

type pushgateway struct {
	mu    sync.Mutex
	paths []string
}

func newPushgateway(t *testing.T) *pushgateway {
	t.Helper()
	gw := &pushgateway{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gw.mu.Lock()
		gw.paths = append(gw.paths, r.Method+" "+r.URL.Path)
		gw.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("LIBINSTALL_METRICS_PUSHGATEWAY_URL", srv.URL)
	return gw
}

func (gw *pushgateway) pushes() []string {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return append([]string(nil), gw.paths...)
}

func TestInstallCommandPushesMetrics(t *testing.T) {
	srv := testutil.NewArchiveServer(t, http.StatusOK, testutil.BuildZip(t, testutil.File("a.txt", "a")))
	ws := newWorkspace(t, fmt.Sprintf(`{"libraries":{"all":%q}}`, srv.URL))
	gw := newPushgateway(t)

	_, err := execute(t, "--manifest", ws.manifest, "--dest", ws.dest)
	require.NoError(t, err)

	pushes := gw.pushes()
	require.Len(t, pushes, 1)
	assert.True(t, strings.HasPrefix(pushes[0], http.MethodPut+" /metrics/job/libinstall/run_id/"), pushes[0])
}

func TestInstallCommandPushesMetricsOnNotFound(t *testing.T) {
	ws := newWorkspace(t, `{"libraries":{}}`)
	gw := newPushgateway(t)

	_, err := execute(t, "--manifest", ws.manifest, "--dest", ws.dest)
	require.NoError(t, err)
	assert.Len(t, gw.pushes(), 1)
}

func TestURLCommandDoesNotPushMetrics(t *testing.T) {
	ws := newWorkspace(t, `{"libraries":{"all":"https://example.com/libs.zip"}}`)
	gw := newPushgateway(t)

	_, err := execute(t, "url", "--manifest", ws.manifest)
	require.NoError(t, err)
	assert.Empty(t, gw.pushes())
}

func TestRecoverInto(t *testing.T) {
	run := func() (err error) {
		defer recoverInto(&err)
		panic("boom")
	}

	err := run()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInternal.Code, apperrors.Code(err))
}
