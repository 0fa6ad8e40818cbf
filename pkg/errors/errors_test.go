package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain",
			err:  ErrURLNotFound,
			want: "URL_NOT_FOUND: archive url not found in manifest",
		},
		{
			name: "with status",
			err:  ErrDownloadFailed.WithDetail(DetailStatusCode, 404),
			want: "DOWNLOAD_FAILED: failed to download the file (status code 404)",
		},
		{
			name: "with cause",
			err:  ErrFilesystem.WithCause(errors.New("disk full")),
			want: "FILESYSTEM_ERROR: filesystem operation failed (caused by: disk full)",
		},
		{
			name: "message detail overrides",
			err:  ErrValidation.WithDetail(DetailMessage, "url is required"),
			want: "VALIDATION_ERROR: url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	_ = ErrDownloadFailed.WithDetail(DetailStatusCode, 500)

	_, ok := StatusCode(ErrDownloadFailed)
	assert.False(t, ok)
	assert.Empty(t, ErrDownloadFailed.Details)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("install: %w", ErrDownloadFailed.WithDetail(DetailStatusCode, 503))

	assert.True(t, errors.Is(err, ErrDownloadFailed))
	assert.False(t, errors.Is(err, ErrInvalidArchive))
	assert.True(t, IsDownloadFailed(err))
	assert.False(t, IsNotFound(err))

	status, ok := StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, 503, status)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "UNSAFE_ENTRY", Code(ErrUnsafeEntry.WithDetail(DetailPath, "../x")))
	assert.Equal(t, "", Code(errors.New("plain")))
	assert.True(t, IsValidation(ErrValidation))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrFilesystem))

	cause := errors.New("permission denied")
	err := Wrap(cause, ErrFilesystem)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "FILESYSTEM_ERROR", err.Code)
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	tests := []struct {
		name  string
		value interface{}
		cause string
	}{
		{name: "string", value: "boom", cause: "panic: boom"},
		{name: "error", value: errors.New("bad"), cause: "bad"},
		{name: "other", value: 42, cause: "panic: 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RecoverPanic(tt.value)
			require.Error(t, err)

			var appErr *Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, ErrInternal.Code, appErr.Code)
			assert.True(t, appErr.IsFatal())
			assert.Equal(t, tt.cause, appErr.Cause.Error())
			assert.NotEmpty(t, appErr.Details["stack_trace"])
		})
	}
}
