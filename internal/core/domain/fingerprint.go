package domain

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// ArtifactKind distinguishes a runnable bundle from its source map.
type ArtifactKind uint8

const (
	// KindBundle is the compiled JavaScript bundle.
	KindBundle ArtifactKind = iota
	// KindSourceMap is the source map of a bundle.
	KindSourceMap
)

const (
	bundleExt    = ".bundle"
	sourceMapExt = ".map"
)

func (k ArtifactKind) String() string {
	if k == KindSourceMap {
		return "sourceMap"
	}
	return "bundle"
}

// Ext returns the URL extension of the kind.
func (k ArtifactKind) Ext() string {
	if k == KindSourceMap {
		return sourceMapExt
	}
	return bundleExt
}

// ContentType returns the HTTP content type artifacts of this kind are served with.
func (k ArtifactKind) ContentType() string {
	if k == KindSourceMap {
		return "application/json; charset=utf-8"
	}
	return "application/javascript; charset=utf-8"
}

// Fingerprint identifies a compilation request. Two equal fingerprints
// always refer to the same artifact.
type Fingerprint struct {
	Entry    string
	Platform string
	Dev      bool
	Minify   bool
	Kind     ArtifactKind
}

// ID returns the exact identity of the fingerprint. Distinct fingerprints
// always have distinct IDs.
func (f Fingerprint) ID() string {
	return strings.Join([]string{
		f.Entry,
		f.Platform,
		strconv.FormatBool(f.Dev),
		strconv.FormatBool(f.Minify),
		f.Kind.String(),
	}, "\x00")
}

// Key returns a short hash of the fingerprint, safe for use in file names.
func (f Fingerprint) Key() string {
	d := xxhash.New()
	_, _ = d.WriteString(f.Entry)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(f.Platform)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatBool(f.Dev))
	_, _ = d.WriteString(strconv.FormatBool(f.Minify))
	_, _ = d.WriteString(f.Kind.String())
	return strconv.FormatUint(d.Sum64(), 16)
}

// Sibling returns the fingerprint of the other artifact produced by the same compilation.
func (f Fingerprint) Sibling() Fingerprint {
	s := f
	if f.Kind == KindBundle {
		s.Kind = KindSourceMap
	} else {
		s.Kind = KindBundle
	}
	return s
}

// Path returns the URL path the artifact is served under.
func (f Fingerprint) Path() string {
	name := f.Entry
	if f.Platform != "" && !strings.HasSuffix(name, "."+f.Platform) {
		name += "." + f.Platform
	}
	return "/" + name + f.Kind.Ext()
}

// Query returns the URL query that reproduces the fingerprint.
func (f Fingerprint) Query() url.Values {
	q := url.Values{}
	q.Set("dev", strconv.FormatBool(f.Dev))
	q.Set("minify", strconv.FormatBool(f.Minify))
	q.Set("platform", f.Platform)
	return q
}

func (f Fingerprint) String() string {
	return f.Path() + "?" + f.Query().Encode()
}

// ArtifactRequest is a bundle or source map request parsed from a URL.
type ArtifactRequest struct {
	Name     string
	Platform string
	Dev      bool
	Minify   bool
	Kind     ArtifactKind
}

// ParseArtifactRequest parses /<name>.bundle or /<name>.map together with the
// dev, minify and platform query parameters. When the platform parameter is
// absent, the last dot-separated segment of name is used.
func ParseArtifactRequest(p string, query url.Values) (ArtifactRequest, error) {
	base := path.Base(p)
	if base == "/" || base == "." || path.Dir(p) != "/" {
		return ArtifactRequest{}, zerr.With(zerr.Wrap(ErrUnknownArtifactPath, "cannot route request"), "path", p)
	}

	var req ArtifactRequest
	switch {
	case strings.HasSuffix(base, bundleExt):
		req.Kind = KindBundle
		req.Name = strings.TrimSuffix(base, bundleExt)
	case strings.HasSuffix(base, sourceMapExt):
		req.Kind = KindSourceMap
		req.Name = strings.TrimSuffix(base, sourceMapExt)
	default:
		return ArtifactRequest{}, zerr.With(zerr.Wrap(ErrUnknownArtifactPath, "cannot route request"), "path", p)
	}
	if req.Name == "" {
		return ArtifactRequest{}, zerr.With(zerr.Wrap(ErrUnknownArtifactPath, "cannot route request"), "path", p)
	}

	req.Platform = query.Get("platform")
	if req.Platform == "" {
		if i := strings.LastIndexByte(req.Name, '.'); i >= 0 {
			req.Platform = req.Name[i+1:]
		}
	}

	var err error
	if req.Dev, err = parseBoolParam(query, "dev", true); err != nil {
		return ArtifactRequest{}, err
	}
	if req.Minify, err = parseBoolParam(query, "minify", false); err != nil {
		return ArtifactRequest{}, err
	}
	return req, nil
}

// Fingerprint resolves the request against the configured entry.
func (r ArtifactRequest) Fingerprint(entry string) (Fingerprint, error) {
	if r.Platform == "" {
		return Fingerprint{}, zerr.With(zerr.Wrap(ErrUnknownPlatform, "cannot route request"), "name", r.Name)
	}
	if !matchesEntry(r.Name, entry, r.Platform) {
		err := zerr.With(zerr.Wrap(ErrUnknownEntry, "cannot route request"), "name", r.Name)
		return Fingerprint{}, zerr.With(err, "entry", entry)
	}
	return Fingerprint{
		Entry:    entry,
		Platform: r.Platform,
		Dev:      r.Dev,
		Minify:   r.Minify,
		Kind:     r.Kind,
	}, nil
}

func matchesEntry(name, entry, platform string) bool {
	suffix := "." + platform
	return name == entry ||
		name == entry+suffix ||
		strings.TrimSuffix(name, suffix) == strings.TrimSuffix(entry, suffix)
}

func parseBoolParam(query url.Values, key string, def bool) (bool, error) {
	raw := query.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		err = zerr.With(zerr.Wrap(ErrInvalidQuery, "cannot parse "+key), "value", raw)
		return false, err
	}
	return v, nil
}
