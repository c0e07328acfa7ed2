package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/rnws/internal/adapters/logger"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "standard error",
			err:          errors.New("simple error"),
			wantMessages: []string{"simple error"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "zerr chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle"), "outer"),
			wantMessages: []string{"outer", "middle", "root cause"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name:         "metadata on a plain error",
			err:          zerr.With(errors.New("permission denied"), "path", "/tmp/main.jsbundle"),
			wantMessages: []string{"permission denied"},
			wantMetadata: []map[string]any{{"path": "/tmp/main.jsbundle"}},
		},
		{
			name: "joined category",
			err: errors.Join(
				domain.ErrStartupFailure,
				zerr.With(zerr.Wrap(errors.New("boom"), "failed to start engine"), "backend", "web"),
			),
			wantMessages: []string{"server failed to start", "failed to start engine", "boom"},
			wantMetadata: []map[string]any{{}, {"backend": "web"}, nil},
		},
		{
			name:         "nil",
			err:          nil,
			wantMessages: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)
			if tt.err == nil {
				assert.Empty(t, entries)
				return
			}

			assert.Len(t, entries, len(tt.wantMessages))
			for i, want := range tt.wantMessages {
				assert.Equal(t, want, entries[i].Message, "message %d", i)
				assert.Equal(t, tt.wantMetadata[i], entries[i].Metadata, "metadata %d", i)
			}
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single",
			entries: []logger.ErrorEntry{{Message: "single error"}},
			want:    "Error: single error",
		},
		{
			name:    "causes",
			entries: []logger.ErrorEntry{{Message: "outer"}, {Message: "inner"}, {Message: "root"}},
			want:    "Error: outer\n\n  Caused by:\n    → inner\n    → root",
		},
		{
			name: "sorted metadata",
			entries: []logger.ErrorEntry{{
				Message:  "failed to write artifact",
				Metadata: map[string]any{"path": "ios/main.jsbundle", "kind": "bundle"},
			}},
			want: "Error: failed to write artifact\n       kind: bundle\n       path: ios/main.jsbundle",
		},
		{
			name: "multiline diagnostics",
			entries: []logger.ErrorEntry{
				{Message: "cannot compile"},
				{Message: "compilation failed (web)\nindex.js:1:4: Unexpected \"}\""},
			},
			want: "Error: cannot compile\n\n  Caused by:\n    → compilation failed (web)\n      index.js:1:4: Unexpected \"}\"",
		},
		{
			name:    "empty",
			entries: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
