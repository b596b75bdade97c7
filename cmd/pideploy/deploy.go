// cmd/pideploy/deploy.go

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pideploy/internal/catalog"
	"pideploy/internal/config"
	"pideploy/internal/deploy"
	"pideploy/internal/install"
	"pideploy/internal/models"
	"pideploy/internal/probe"
	"pideploy/internal/sshx"
)

var (
	deployConnection  string
	deployOutputDir   string
	deployAssembly    string
	deployVersion     string
	deployWeb         bool
	deployPort        int
	deployBrowser     bool
	deployBrowserURI  string
	deployArgs        []string
	deployEnv         map[string]string
	deploySolutionDir string
	deployDebug       bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Provision a device and deploy the built program to it",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		cat, err := catalog.Load()
		if err != nil {
			return err
		}
		resolver := catalog.NewResolver(cat)

		props := &models.ProjectProperties{
			TargetVersion:        deployVersion,
			OutputDir:            deployOutputDir,
			AssemblyName:         deployAssembly,
			IsExecutable:         true,
			IsWebProject:         deployWeb,
			LaunchBrowser:        deployBrowser,
			RelativeBrowserURI:   deployBrowserURI,
			Port:                 deployPort,
			CommandLineArgs:      deployArgs,
			EnvironmentVariables: deployEnv,
			VersionSupported:     resolver.IsVersionSupported(deployVersion),
		}

		settingsStore := config.NewSettingsStore(deploySolutionDir)
		if err := settingsStore.Load(); err != nil {
			return err
		}
		settings, err := settingsStore.GetOrCreate(props.AssemblyName)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debugger") {
			settings.RemoteDebuggingEnabled = deployDebug
			if err := settingsStore.Set(props.AssemblyName, settings); err != nil {
				return err
			}
		}

		// Flag wins over the project's pinned connection, which wins over
		// the store default.
		connName := deployConnection
		if connName == "" && settings.TargetConnectionName != nil {
			connName = *settings.TargetConnectionName
		}
		info, err := resolveConnection(store, connName)
		if err != nil {
			return err
		}

		logger := slog.Default()
		manager := sshx.NewManager(store, logger)
		manager.SetTimeout(toolCfg.ConnectTimeout)
		installer := install.NewInstaller(install.NewHTTPDownloader(toolCfg.DownloadTimeout), logger)
		installer.SetRetryDelay(toolCfg.RetryDelay)

		pipeline := deploy.NewPipeline(
			manager,
			probe.NewProber(logger),
			installer,
			resolver,
			newCoordinator(),
			logger,
		)
		result, err := pipeline.Deploy(cmd.Context(), props, settings, info)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deployed %s to %s:~/%s\n", props.AssemblyName, result.Target, result.DeployDir)
		fmt.Fprintf(out, "Runtime: %s\n", result.Runtime.DirName())
		if settings.RemoteDebuggingEnabled {
			fmt.Fprintf(out, "Debugger: %s\n", result.Debugger.DirName())
		}
		if result.BrowserURI != "" {
			fmt.Fprintf(out, "Open: http://%s:%d/%s\n", info.Host, props.Port, result.BrowserURI)
		}
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployConnection, "connection", "", "Stored connection to deploy to (default connection when omitted)")
	deployCmd.Flags().StringVar(&deployOutputDir, "output-dir", "", "Local publish directory to upload")
	deployCmd.Flags().StringVar(&deployAssembly, "assembly", "", "Program name; also keys the remote deployment directory")
	deployCmd.Flags().StringVar(&deployVersion, "runtime-version", "", "Runtime version to target, as major.minor")
	deployCmd.Flags().BoolVar(&deployWeb, "web", false, "Treat the program as a web project (forced bind address, injected port)")
	deployCmd.Flags().IntVar(&deployPort, "port", 5000, "Listening port for web projects")
	deployCmd.Flags().BoolVar(&deployBrowser, "launch-browser", false, "Report the browser URI after a web launch")
	deployCmd.Flags().StringVar(&deployBrowserURI, "browser-uri", "", "Relative URI reported for browser launch")
	deployCmd.Flags().StringArrayVar(&deployArgs, "arg", nil, "Argument passed to the remote program (repeatable)")
	deployCmd.Flags().StringToStringVar(&deployEnv, "env", nil, "Launch environment variable, as KEY=VALUE (repeatable)")
	deployCmd.Flags().StringVar(&deploySolutionDir, "solution-dir", ".", "Directory holding the per-project deployment settings")
	deployCmd.Flags().BoolVar(&deployDebug, "debugger", false, "Install the remote debugger alongside the runtime")
	_ = deployCmd.MarkFlagRequired("output-dir")
	_ = deployCmd.MarkFlagRequired("assembly")
	_ = deployCmd.MarkFlagRequired("runtime-version")
}
