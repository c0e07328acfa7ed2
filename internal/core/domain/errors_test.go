package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/rnws/internal/core/domain"
)

func TestCompilationError(t *testing.T) {
	err := &domain.CompilationError{
		Backend: domain.BackendWeb,
		Diagnostics: []domain.Diagnostic{
			{Text: "Expected \";\" but found \"}\"", File: "index.ios.js", Line: 3, Column: 7},
			{Text: "bare message"},
		},
	}

	assert.ErrorIs(t, err, domain.ErrCompilation)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), domain.ErrCompilation)
	assert.NotErrorIs(t, err, domain.ErrBackendUnavailable)

	assert.Equal(t,
		"compilation failed (web)\nindex.ios.js:3:7: Expected \";\" but found \"}\"\nbare message",
		err.Error(),
	)

	var target *domain.CompilationError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Len(t, target.Diagnostics, 2)
}

func TestArtifact(t *testing.T) {
	out := &domain.BuildOutput{Bundle: []byte("bundle")}

	bundle, ok := out.Artifact(domain.KindBundle)
	assert.True(t, ok)
	assert.Equal(t, "application/javascript; charset=utf-8", bundle.ContentType())
	assert.Equal(t, bundle.ETag(), domain.Artifact{Bytes: []byte("bundle")}.ETag())

	_, ok = out.Artifact(domain.KindSourceMap)
	assert.False(t, ok)
}
