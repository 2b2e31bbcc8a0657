package cli

// Config holds the configuration for one driver invocation. Every
// front-end integration builds one of these; identical configs converge on
// the same configuration identity.
type Config struct {
	// SourceDir is the project root scanned for component functions and
	// service registrations.
	SourceDir string

	// OutputDir is where rewritten sources, cache artifacts and debug
	// files are written.
	OutputDir string

	// PackageName overrides the module path read from go.mod. Empty means
	// resolve from go.mod.
	PackageName string

	// Environment names the build environment (development, production).
	Environment string

	// ConfigSuffix is an optional custom suffix mixed into the
	// configuration identity.
	ConfigSuffix string

	// DebugAddr is where the watch-mode debug server listens.
	DebugAddr string

	// Feature flags.
	EnableFunctionalDI        bool
	EnableInterfaceResolution bool
	GenerateDebugFiles        bool
	Watch                     bool
	Verbose                   bool

	// ConfigRetention is how many generated artifact sets to keep.
	ConfigRetention int
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.SourceDir == "" {
		c.SourceDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = c.SourceDir
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.ConfigRetention <= 0 {
		c.ConfigRetention = 3
	}
	if c.DebugAddr == "" {
		c.DebugAddr = DefaultDebugAddr
	}
	return c
}
