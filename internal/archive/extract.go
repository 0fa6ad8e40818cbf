// Package archive expands zip archives into a destination directory.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"libinstall/internal/constants"
	apperrors "libinstall/pkg/errors"
)

// Extract writes every entry of the zip at src into dest and returns the
// entry names in archive order. Existing files are overwritten.
func Extract(src, dest string) ([]string, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return nil, apperrors.ErrInvalidArchive.
			WithCause(err).
			WithDetail(apperrors.DetailPath, src)
	}
	defer reader.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFilesystem)
	}

	entries := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		target, err := entryPath(root, f.Name)
		if err != nil {
			return entries, err
		}

		if err := extractEntry(f, target); err != nil {
			return entries, err
		}
		entries = append(entries, f.Name)
	}

	return entries, nil
}

// entryPath resolves name under root and refuses anything that lands outside it.
func entryPath(root, name string) (string, error) {
	unsafe := apperrors.ErrUnsafeEntry.WithDetail(apperrors.DetailPath, name)

	if name == "" || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", unsafe
	}

	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", unsafe
	}

	return target, nil
}

func extractEntry(f *zip.File, target string) error {
	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(target, constants.DirPerm); err != nil {
			return fsError(err, target)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), constants.DirPerm); err != nil {
		return fsError(err, target)
	}

	in, err := f.Open()
	if err != nil {
		return apperrors.ErrInvalidArchive.
			WithCause(err).
			WithDetail(apperrors.DetailPath, f.Name)
	}
	defer in.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = constants.DefaultFilePerm
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fsError(err, target)
	}

	src := &trackingReader{r: in}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		if src.err != nil {
			// checksum and inflate failures
			return apperrors.ErrInvalidArchive.
				WithCause(fmt.Errorf("failed to read %s: %w", f.Name, src.err)).
				WithDetail(apperrors.DetailPath, f.Name)
		}
		return fsError(err, target)
	}

	if err := out.Close(); err != nil {
		return fsError(err, target)
	}

	return nil
}

// trackingReader remembers read-side failures so they can be told apart
// from write failures after io.Copy.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

func fsError(err error, path string) error {
	return apperrors.ErrFilesystem.
		WithCause(err).
		WithDetail(apperrors.DetailPath, path)
}
