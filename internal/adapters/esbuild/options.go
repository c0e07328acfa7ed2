package esbuild

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/zerr"
)

var loaders = map[string]api.Loader{
	"base64":  api.LoaderBase64,
	"binary":  api.LoaderBinary,
	"copy":    api.LoaderCopy,
	"css":     api.LoaderCSS,
	"dataurl": api.LoaderDataURL,
	"default": api.LoaderDefault,
	"empty":   api.LoaderEmpty,
	"file":    api.LoaderFile,
	"js":      api.LoaderJS,
	"json":    api.LoaderJSON,
	"jsx":     api.LoaderJSX,
	"text":    api.LoaderText,
	"ts":      api.LoaderTS,
	"tsx":     api.LoaderTSX,
}

var targets = map[string]api.Target{
	"":       api.ES2017,
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var jsxModes = map[string]api.JSX{
	"":          api.JSXAutomatic,
	"automatic": api.JSXAutomatic,
	"transform": api.JSXTransform,
	"preserve":  api.JSXPreserve,
}

var sourceExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

type compiledOptions struct {
	loader map[string]api.Loader
	target api.Target
	jsx    api.JSX
}

func compileOptions(opts domain.WebOptions) (compiledOptions, error) {
	var out compiledOptions

	target, ok := targets[strings.ToLower(opts.Target)]
	if !ok {
		return out, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unsupported target"), "target", opts.Target)
	}
	out.target = target

	jsx, ok := jsxModes[strings.ToLower(opts.JSX)]
	if !ok {
		return out, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unsupported jsx mode"), "jsx", opts.JSX)
	}
	out.jsx = jsx

	if len(opts.Loader) > 0 {
		out.loader = make(map[string]api.Loader, len(opts.Loader))
		for ext, name := range opts.Loader {
			l, ok := loaders[strings.ToLower(name)]
			if !ok {
				err := zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unsupported loader"), "loader", name)
				return out, zerr.With(err, "extension", ext)
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			out.loader[ext] = l
		}
	}
	return out, nil
}

// resolveExtensions lists platform-specific extensions ahead of the generic ones.
func resolveExtensions(id domain.BackendID, platform string, configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	exts := make([]string, 0, 3*len(sourceExtensions)+1)
	for _, ext := range sourceExtensions {
		exts = append(exts, "."+platform+ext)
	}
	if id == domain.BackendNative {
		for _, ext := range sourceExtensions {
			exts = append(exts, ".native"+ext)
		}
	}
	exts = append(exts, sourceExtensions...)
	return append(exts, ".json")
}
