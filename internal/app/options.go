package app

import "go.trai.ch/rnws/internal/core/domain"

// CommonOptions are the flags shared by every server command.
type CommonOptions struct {
	Hostname          string
	Port              int
	PackagerPort      int
	WebpackPort       int
	WebpackConfigPath string
	Entry             string
	ResetCache        bool
}

// StartOptions configures the interactive server.
type StartOptions struct {
	CommonOptions
	Hot   bool
	Watch bool
}

// BundleOptions configures a one-shot extraction.
type BundleOptions struct {
	CommonOptions
	domain.BundleOptions
}

func (o CommonOptions) configPath() string {
	if o.WebpackConfigPath == "" {
		return domain.DefaultConfigFileName
	}
	return o.WebpackConfigPath
}

func (o CommonOptions) entry() string {
	if o.Entry == "" {
		return domain.DefaultEntry
	}
	return o.Entry
}
