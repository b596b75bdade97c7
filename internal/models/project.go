// internal/models/project.go

package models

// ProjectProperties is a read-only, per-build snapshot of everything the
// orchestrator needs from the build system. It is recomputed on every deploy
// request and never cached across builds.
type ProjectProperties struct {
	// TargetVersion is the requested runtime version as major.minor
	// (patch is resolved against the catalog).
	TargetVersion string

	// OutputDir is the local publish directory holding the built artifact.
	OutputDir string

	// AssemblyName is the output file name; it also keys the per-program
	// remote deployment directory.
	AssemblyName string

	// IsExecutable reports whether the project produces a runnable output.
	IsExecutable bool

	// IsWebProject marks web-server-style projects that need a forced bind
	// address and an injected port on launch.
	IsWebProject bool

	// LaunchBrowser asks for the relative URI to open after launch.
	LaunchBrowser bool

	// RelativeBrowserURI is the path reported back for browser launch.
	RelativeBrowserURI string

	// Port is the listening port injected for web projects.
	Port int

	// CommandLineArgs are passed to the remote program verbatim.
	CommandLineArgs []string

	// EnvironmentVariables are the project's declared launch variables,
	// merged under the required runtime overrides at launch.
	EnvironmentVariables map[string]string

	// VersionSupported reports whether TargetVersion resolves against the
	// catalog at all.
	VersionSupported bool
}

// IsRaspberryCompatible gates a deployment: the project must target a
// resolvable version, produce an executable output, and declare a
// remote-deployable runtime version.
func (p *ProjectProperties) IsRaspberryCompatible() bool {
	return p.IsExecutable && p.TargetVersion != "" && p.VersionSupported
}
