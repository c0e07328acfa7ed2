package config

// Document is the on-disk shape of the bundler configuration file.
type Document struct {
	Root      string            `yaml:"root" json:"root"`
	Entries   map[string]string `yaml:"entries" json:"entries"`
	Platforms map[string]string `yaml:"platforms" json:"platforms"`
	Web       WebDTO            `yaml:"web" json:"web"`
	Native    NativeDTO         `yaml:"native" json:"native"`
}

// WebDTO configures the in-process module bundler.
type WebDTO struct {
	Define            map[string]string `yaml:"define" json:"define"`
	External          []string          `yaml:"external" json:"external"`
	Loader            map[string]string `yaml:"loader" json:"loader"`
	ResolveExtensions []string          `yaml:"resolveExtensions" json:"resolveExtensions"`
	Target            string            `yaml:"target" json:"target"`
	JSX               string            `yaml:"jsx" json:"jsx"`
}

// NativeDTO configures the native packager backend.
type NativeDTO struct {
	Engine  string            `yaml:"engine" json:"engine"`
	Command []string          `yaml:"command" json:"command"`
	Env     map[string]string `yaml:"env" json:"env"`
}
