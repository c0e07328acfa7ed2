package domain

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Artifact is a compiled output held by the bundle cache. Its bytes are
// never modified after it is stored.
type Artifact struct {
	Kind      ArtifactKind
	Bytes     []byte
	CreatedAt time.Time
}

// ContentType returns the HTTP content type of the artifact.
func (a Artifact) ContentType() string {
	return a.Kind.ContentType()
}

// ETag returns a strong entity tag derived from the artifact bytes.
func (a Artifact) ETag() string {
	return `"` + strconv.FormatUint(xxhash.Sum64(a.Bytes), 16) + `"`
}

// BuildOutput is everything a single compilation produced.
type BuildOutput struct {
	Bundle    []byte
	SourceMap []byte
	CreatedAt time.Time
}

// Artifact returns the output of the given kind and whether it was produced.
func (o *BuildOutput) Artifact(kind ArtifactKind) (Artifact, bool) {
	data := o.Bundle
	if kind == KindSourceMap {
		data = o.SourceMap
	}
	if data == nil {
		return Artifact{}, false
	}
	return Artifact{Kind: kind, Bytes: data, CreatedAt: o.CreatedAt}, true
}
