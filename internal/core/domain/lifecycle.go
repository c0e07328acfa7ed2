package domain

// BackendID names one of the two compilation backends.
type BackendID string

const (
	// BackendWeb is the module-bundler backend serving web/document requests.
	BackendWeb BackendID = "web"
	// BackendNative is the packager backend serving native-runtime requests.
	BackendNative BackendID = "native"
)

// Backends lists every backend in start order.
var Backends = []BackendID{BackendWeb, BackendNative}

// Valid reports whether id names a known backend.
func (id BackendID) Valid() bool {
	return id == BackendWeb || id == BackendNative
}

// BackendState is the lifecycle state of a backend handle.
type BackendState uint8

const (
	// BackendStopped means the engine is not running and owns no socket.
	BackendStopped BackendState = iota
	// BackendStarting means the handle is binding its listener and starting its engine.
	BackendStarting
	// BackendReady means the handle accepts compilation requests.
	BackendReady
	// BackendStopping means the handle is releasing its resources.
	BackendStopping
)

func (s BackendState) String() string {
	switch s {
	case BackendStopped:
		return "stopped"
	case BackendStarting:
		return "starting"
	case BackendReady:
		return "ready"
	case BackendStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// ServerState is the lifecycle state of the public server.
type ServerState uint8

const (
	// ServerStopped means no backend is ready and the public socket is closed.
	ServerStopped ServerState = iota
	// ServerStarting means backends are starting or the public socket is being bound.
	ServerStarting
	// ServerListening means both backends are ready and the public socket is bound.
	ServerListening
	// ServerStopping means resources are being released.
	ServerStopping
)

func (s ServerState) String() string {
	switch s {
	case ServerStopped:
		return "stopped"
	case ServerStarting:
		return "starting"
	case ServerListening:
		return "listening"
	case ServerStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
