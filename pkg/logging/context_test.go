package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetLogFields(ctx))

	ctx = WithRunID(ctx, "run-1")
	ctx = WithURL(ctx, "https://example.com/libs.zip")
	ctx = WithDestination(ctx, "/tmp/libs")

	assert.Equal(t, []interface{}{
		"run_id", "run-1",
		"url", "https://example.com/libs.zip",
		"destination", "/tmp/libs",
	}, GetLogFields(ctx))

	ctx = WithCommand(ctx, "install")
	assert.Equal(t, "install", GetCommand(ctx))
	assert.Equal(t, "run-1", GetRunID(ctx))
	assert.Equal(t, "/tmp/libs", GetDestination(ctx))
	assert.Equal(t, "https://example.com/libs.zip", GetURL(ctx))
}

func TestEarlyLog(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewEarlyLogTo(&out, &errOut)

	l.Info("loaded %s", "config.yaml")
	l.Warn("no config file")
	l.Error("failed: %v", "boom")

	assert.Equal(t, "INFO: loaded config.yaml\n", out.String())
	assert.Equal(t, "WARN: no config file\nERROR: failed: boom\n", errOut.String())
}
