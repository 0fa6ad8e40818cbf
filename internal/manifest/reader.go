// Package manifest reads a single string field out of a project manifest
// such as package.json. The rest of the document is never interpreted.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	apperrors "libinstall/pkg/errors"
)

type Reader struct {
	format string
}

type Option func(*Reader)

// WithFormat forces the manifest format (json, yaml, toml, ...) instead of
// inferring it from the file extension.
func WithFormat(format string) Option {
	return func(r *Reader) {
		r.format = format
	}
}

func NewReader(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadString returns the string at the dotted field path. A missing field,
// a missing or non-object parent, null and "" all report found == false
// without an error. Unreadable or malformed input is an error. Keys match
// case-insensitively, so "Libraries.ALL" resolves the same value as
// "libraries.all".
func (r *Reader) ReadString(path, field string) (string, bool, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(r.formatFor(path))

	if err := v.ReadInConfig(); err != nil {
		appErr := apperrors.ErrManifestUnreadable.
			WithCause(err).
			WithDetail(apperrors.DetailPath, path)
		if errors.Is(err, fs.ErrNotExist) {
			appErr = appErr.WithDetail(apperrors.DetailMessage, "manifest does not exist")
		}
		return "", false, appErr
	}

	raw := v.Get(field)
	if raw == nil {
		return "", false, nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", false, apperrors.ErrValidation.
			WithDetail(apperrors.DetailField, field).
			WithDetail(apperrors.DetailPath, path).
			WithDetail(apperrors.DetailMessage, fmt.Sprintf("field %s holds %T, want string", field, raw))
	}

	if value == "" {
		return "", false, nil
	}

	return value, true, nil
}

func (r *Reader) formatFor(path string) string {
	if r.format != "" {
		return r.format
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if slices.Contains(viper.SupportedExts, ext) {
		return ext
	}
	return "json"
}
