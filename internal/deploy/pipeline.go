// internal/deploy/pipeline.go

// Package deploy drives a full provisioning and deployment run against one
// device: connect, probe, install the required components, push the built
// program, and launch it.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"pideploy/internal/catalog"
	"pideploy/internal/config"
	"pideploy/internal/install"
	"pideploy/internal/models"
	"pideploy/internal/pderr"
	"pideploy/internal/progress"
	"pideploy/internal/sshx"
)

// Connector opens an authenticated session to a device.
type Connector interface {
	Connect(ctx context.Context, info *models.ConnectionInfo) (sshx.Session, error)
}

// Prober inspects a connected device.
type Prober interface {
	Probe(ctx context.Context, sess sshx.Session) (*models.Status, error)
}

// ComponentInstaller reconciles one resolved catalog item onto the device.
type ComponentInstaller interface {
	EnsureInstalled(ctx context.Context, sess sshx.Session, status *models.Status, item catalog.Item) (*install.Result, error)
}

// Result reports what a deployment run did.
type Result struct {
	// RunID identifies the run in the logs.
	RunID string

	// Target is the user@host identity the run deployed to.
	Target string

	// Status is the device snapshot after installs.
	Status *models.Status

	// Runtime and Debugger are the components the run resolved. Debugger
	// is the zero value when remote debugging was not requested.
	Runtime  models.Component
	Debugger models.Component

	// DeployDir is the remote directory the program was published to,
	// relative to the device user's home.
	DeployDir string

	// BrowserURI is the relative URI to open locally after a web launch,
	// empty otherwise.
	BrowserURI string
}

// Pipeline is the deployment orchestrator. It holds no per-run state; the
// resolved items and device snapshot belong to a single Deploy call and are
// discarded when it returns.
type Pipeline struct {
	connector Connector
	prober    Prober
	installer ComponentInstaller
	resolver  *catalog.Resolver
	progress  *progress.Coordinator
	logger    *slog.Logger
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(connector Connector, prober Prober, installer ComponentInstaller, resolver *catalog.Resolver, coord *progress.Coordinator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		connector: connector,
		prober:    prober,
		installer: installer,
		resolver:  resolver,
		progress:  coord,
		logger:    logger,
	}
}

// Deploy runs the full pipeline against one device. The first failing step
// aborts the run; partial installs stay on the device and are picked up by
// the idempotence check on the next run.
func (p *Pipeline) Deploy(ctx context.Context, props *models.ProjectProperties, settings config.DeploySettings, info *models.ConnectionInfo) (*Result, error) {
	if !props.IsRaspberryCompatible() {
		return nil, pderr.Newf(pderr.CodeNotCompatible,
			"project %s cannot be deployed: it must target a supported runtime version and produce an executable output",
			props.AssemblyName)
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Target: info.Name(),
	}
	logger := p.logger.With("run_id", result.RunID, "target", result.Target)
	logger.Info("starting deployment", "assembly", props.AssemblyName, "version", props.TargetVersion)

	// One progress surface per run; every step nests inside it.
	err := p.progress.WithProgress(
		fmt.Sprintf("Deploying %s to %s", props.AssemblyName, result.Target),
		func() error {
			return p.run(ctx, props, settings, info, result, logger)
		})
	if err != nil {
		return nil, err
	}
	logger.Info("deployment finished", "deploy_dir", result.DeployDir)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, props *models.ProjectProperties, settings config.DeploySettings, info *models.ConnectionInfo, result *Result, logger *slog.Logger) error {
	var sess sshx.Session
	err := p.progress.WithProgress(fmt.Sprintf("Connecting to %s", result.Target), func() error {
		var err error
		sess, err = p.connector.Connect(ctx, info)
		return err
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	var status *models.Status
	err = p.progress.WithProgress("Inspecting device", func() error {
		var err error
		status, err = p.prober.Probe(ctx, sess)
		return err
	})
	if err != nil {
		return err
	}
	if status.Architecture == models.ArchUnknown {
		return pderr.Newf(pderr.CodeUnknownArch,
			"device %s reports unrecognized processor %q", result.Target, status.Processor)
	}
	if !status.Supported {
		return pderr.Newf(pderr.CodeUnsupportedBoard,
			"device %s is not a supported board: %q", result.Target, status.BoardModel)
	}
	if !status.HasRequiredTools {
		return pderr.Newf(pderr.CodeMissingTools,
			"device %s is missing required tools: %s",
			result.Target, strings.Join(status.MissingTools, ", "))
	}
	logger.Info("device probed",
		"board", status.BoardModel,
		"architecture", status.Architecture,
		"installed", len(status.InstalledComponents))

	status, err = p.installRuntime(ctx, sess, status, props, result)
	if err != nil {
		return err
	}
	if settings.RemoteDebuggingEnabled {
		status, err = p.installDebugger(ctx, sess, status, result)
		if err != nil {
			return err
		}
	}
	result.Status = status

	result.DeployDir = fmt.Sprintf("pideploy/%s", props.AssemblyName)
	err = p.progress.WithProgress(fmt.Sprintf("Publishing %s", props.AssemblyName), func() error {
		if err := sess.UploadDir(ctx, props.OutputDir, result.DeployDir); err != nil {
			return pderr.Wrap(pderr.CodeTransferFailure,
				fmt.Sprintf("failed to transfer %s to %s", props.OutputDir, result.DeployDir), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = p.progress.WithProgress(fmt.Sprintf("Launching %s", props.AssemblyName), func() error {
		return p.launch(ctx, sess, props, result.DeployDir)
	})
	if err != nil {
		return err
	}

	if props.IsWebProject && props.LaunchBrowser {
		result.BrowserURI = props.RelativeBrowserURI
	}
	return nil
}

func (p *Pipeline) installRuntime(ctx context.Context, sess sshx.Session, status *models.Status, props *models.ProjectProperties, result *Result) (*models.Status, error) {
	item, err := p.resolver.Resolve(catalog.CategoryRuntime, props.TargetVersion, status.Architecture)
	if err != nil {
		return nil, err
	}
	result.Runtime = item.Component()

	err = p.progress.WithProgress(fmt.Sprintf("Installing %s", item.Name), func() error {
		res, err := p.installer.EnsureInstalled(ctx, sess, status, item)
		if err != nil {
			return err
		}
		status = res.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (p *Pipeline) installDebugger(ctx context.Context, sess sshx.Session, status *models.Status, result *Result) (*models.Status, error) {
	item, err := p.resolver.ResolveLatest(catalog.CategoryDebugger, status.Architecture)
	if err != nil {
		return nil, err
	}
	result.Debugger = item.Component()
	if status.HasDebugger {
		return status, nil
	}

	err = p.progress.WithProgress(fmt.Sprintf("Installing %s", item.Name), func() error {
		res, err := p.installer.EnsureInstalled(ctx, sess, status, item)
		if err != nil {
			return err
		}
		status = res.Status.WithDebugger()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// launch starts the deployed program detached from the session. The profile
// exports only reach login shells, so the launch environment carries the
// runtime overrides explicitly.
func (p *Pipeline) launch(ctx context.Context, sess sshx.Session, props *models.ProjectProperties, deployDir string) error {
	command := fmt.Sprintf("cd %s && chmod +x ./%s && %s nohup ./%s%s >/dev/null 2>&1 &",
		shellQuote(deployDir),
		shellQuote(props.AssemblyName),
		launchEnv(props),
		shellQuote(props.AssemblyName),
		launchArgs(props.CommandLineArgs))
	if err := sess.Start(ctx, command); err != nil {
		return pderr.Wrap(pderr.CodeLaunchFailure,
			fmt.Sprintf("failed to launch %s", props.AssemblyName), err)
	}
	return nil
}

// launchEnv renders the inline environment for the launch command: the
// project's declared variables with the runtime overrides applied on top.
// PATH is rendered unquoted on purpose so $PATH expands on the device.
func launchEnv(props *models.ProjectProperties) string {
	merged := make(map[string]string, len(props.EnvironmentVariables)+2)
	for k, v := range props.EnvironmentVariables {
		merged[k] = v
	}
	merged[install.EnvRootVar] = install.Root
	if props.IsWebProject {
		merged["ASPNETCORE_URLS"] = fmt.Sprintf("http://0.0.0.0:%d", props.Port)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s ", k, shellQuote(merged[k]))
	}
	fmt.Fprintf(&b, `PATH="$PATH:%s"`, install.Root)
	return b.String()
}

func launchArgs(args []string) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(" ")
		b.WriteString(shellQuote(a))
	}
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
