package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/rnws/internal/core/domain"
)

func TestArtifactURL(t *testing.T) {
	t.Parallel()

	fp := domain.Fingerprint{Entry: "index.ios", Platform: "ios", Minify: true, Kind: domain.KindBundle}

	tests := []struct {
		name string
		addr string
		want string
	}{
		{
			name: "loopback",
			addr: "127.0.0.1:8080",
			want: "http://127.0.0.1:8080/index.ios.bundle?dev=false&minify=true&platform=ios",
		},
		{
			name: "ipv4 wildcard",
			addr: "0.0.0.0:8080",
			want: "http://localhost:8080/index.ios.bundle?dev=false&minify=true&platform=ios",
		},
		{
			name: "ipv6 wildcard",
			addr: "[::]:9000",
			want: "http://localhost:9000/index.ios.bundle?dev=false&minify=true&platform=ios",
		},
		{
			name: "ipv6 loopback",
			addr: "[::1]:9000",
			want: "http://[::1]:9000/index.ios.bundle?dev=false&minify=true&platform=ios",
		},
		{
			name: "empty host",
			addr: ":8080",
			want: "http://localhost:8080/index.ios.bundle?dev=false&minify=true&platform=ios",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, artifactURL(tt.addr, fp))
		})
	}

	sourceMap := fp
	sourceMap.Kind = domain.KindSourceMap
	assert.Equal(t,
		"http://127.0.0.1:8080/index.ios.map?dev=false&minify=true&platform=ios",
		artifactURL("127.0.0.1:8080", sourceMap))
}

func TestCommonOptionsDefaults(t *testing.T) {
	t.Parallel()

	var opts CommonOptions
	assert.Equal(t, domain.DefaultConfigFileName, opts.configPath())
	assert.Equal(t, domain.DefaultEntry, opts.entry())

	opts = CommonOptions{WebpackConfigPath: "custom.yaml", Entry: "main"}
	assert.Equal(t, "custom.yaml", opts.configPath())
	assert.Equal(t, "main", opts.entry())
}
