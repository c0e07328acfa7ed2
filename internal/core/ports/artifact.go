package ports

import "context"

//go:generate mockgen -source=artifact.go -destination=mocks/mock_artifact.go -package=mocks

// ArtifactFetcher retrieves an artifact from a running server.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ArtifactWriter persists an artifact, replacing any existing file.
type ArtifactWriter interface {
	Write(path string, data []byte) error
}
