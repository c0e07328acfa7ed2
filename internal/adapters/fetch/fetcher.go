// Package fetch downloads artifacts from a running server.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/zerr"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// Fetcher implements ports.ArtifactFetcher over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher using the given client, or http.DefaultClient when nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Fetch performs a GET request and returns the body of a 200 response.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fetchFailed(err, url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fetchFailed(err, url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := "unexpected status " + resp.Status
		if text := strings.TrimSpace(string(body)); text != "" {
			msg += ": " + text
		}
		return nil, fetchFailed(zerr.New(msg), url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchFailed(err, url)
	}
	return data, nil
}

func fetchFailed(err error, url string) error {
	return errors.Join(domain.ErrFetchFailed, zerr.With(err, "url", url))
}
