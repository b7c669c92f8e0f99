package cli

// Default values applied when the corresponding flag is omitted.
const (
	DefaultLogLevel     = "info"
	DefaultHost         = "localhost"
	DefaultDockerSocket = "/var/run/docker.sock"
	DefaultNamespace    = "default"
)

// Options is the normalized user intent parsed from command-line flags.
// It is built once at startup and never mutated afterwards.
type Options struct {
	ConfigPath    string
	LogLevel      string
	WorkspacePath string
	Port          int
	PortSet       bool
	Host          string
	DevMode       bool
	MockMode      bool

	ValidateOnly    bool
	ListToolsOnly   bool
	HealthCheckOnly bool

	DockerSocketPath string
	K8sNamespace     string
}
