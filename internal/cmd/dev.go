package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/steveyegge/stoker/internal/config"
	"github.com/steveyegge/stoker/internal/constants"
	"github.com/steveyegge/stoker/internal/ignore"
	"github.com/steveyegge/stoker/internal/lock"
	"github.com/steveyegge/stoker/internal/manifest"
	"github.com/steveyegge/stoker/internal/runlog"
	"github.com/steveyegge/stoker/internal/runner"
	"github.com/steveyegge/stoker/internal/style"
	"github.com/steveyegge/stoker/internal/supervisor"
	"github.com/steveyegge/stoker/internal/util"
	"github.com/steveyegge/stoker/internal/watcher"
	"github.com/steveyegge/stoker/internal/workspace"
)

var (
	devConfigPath        string
	devNoWatch           bool
	devRelease           bool
	devTarget            string
	devFeatures          []string
	devNoDefaultFeatures bool
	devRunner            string
)

var devCmd = &cobra.Command{
	Use:   "dev [flags] [-- app-args...]",
	Short: "Run the app in development mode",
	Long: `Run the app in development mode, restarting it when sources change.

Stoker watches every workspace member's directory. When a watched file
changes the app is killed, fully reaped, and respawned with the current
configuration. When stoker.toml changes the configuration is reloaded in
place and the manifest regenerated without restarting the app.

Arguments after "--" are passed through to the app itself.

Examples:
  stoker dev                         # Watch and restart on change
  stoker dev --release               # Spawn release builds
  stoker dev --no-watch              # Run once, no file watching
  stoker dev --features tray -- -v   # Enable a feature, pass -v to the app`,
	RunE: runDev,
}

func init() {
	devCmd.Flags().StringVarP(&devConfigPath, "config", "c", "", "Path to the configuration file (default ./stoker.toml)")
	devCmd.Flags().BoolVar(&devNoWatch, "no-watch", false, "Run the app once without watching for changes")
	devCmd.Flags().BoolVar(&devRelease, "release", false, "Spawn release builds instead of debug builds")
	devCmd.Flags().StringVar(&devTarget, "target", "", "Build target triple passed to the runner")
	devCmd.Flags().StringSliceVarP(&devFeatures, "features", "f", nil, "Extra features passed to the runner (in addition to the configured ones)")
	devCmd.Flags().BoolVar(&devNoDefaultFeatures, "no-default-features", false, "Disable the runner's default features")
	devCmd.Flags().StringVar(&devRunner, "runner", "", "Override the configured runner binary")

	rootCmd.AddCommand(devCmd)
}

func runDev(cmd *cobra.Command, args []string) error {
	env := config.ReadEnv()

	projectDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving project directory: %w", err)
	}

	handle, err := config.Load(projectDir, devConfigPath, env)
	if err != nil {
		return err
	}
	cfg := handle.Current()

	// Claim the project before doing anything with side effects; a second
	// concurrent session must fail here, not after running the hook.
	logger := runlog.NewLogger(projectDir)
	devLock := lock.New(projectDir)
	if err := devLock.Acquire(logger.Session()); err != nil {
		return err
	}
	defer devLock.Release()

	if err := runBeforeDevCommand(projectDir, cfg); err != nil {
		return err
	}

	scope, err := workspace.Resolve(projectDir, workspace.CargoMetadata{})
	if err != nil {
		return fmt.Errorf("resolving workspace: %w", err)
	}

	writer := &manifest.Writer{Dir: projectDir}
	if err := writer.Reload(cfg); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	_ = logger.Log(runlog.EventSessionStart, handle.Path(), "")

	// Args after "--" belong to the app, everything before to the runner.
	runnerArgs, appArgs := args, []string(nil)
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		runnerArgs, appArgs = args[:at], args[at:]
	}

	spawn := func(c config.Config, onExit func(runner.Status)) (supervisor.Process, error) {
		return runner.Spawn(devStrategy(c, projectDir, runnerArgs, appArgs), onExit)
	}

	if devNoWatch {
		sup := supervisor.New(nil, spawn, handle, writer, logger)
		return sup.RunOnce()
	}

	ig, err := ignore.New(env)
	if err != nil {
		return fmt.Errorf("loading ignore rules: %w", err)
	}

	w, err := watcher.New(scope, ig, style.PrintWarning)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		_ = w.Close()
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	style.PrintInfo("Watching %d root(s) for changes...", len(scope.Roots))

	sup := supervisor.New(w.Events(), spawn, handle, writer, logger)
	return sup.Run()
}

// devStrategy renders the run strategy for one spawn from the current config
// snapshot plus the CLI flags.
func devStrategy(cfg config.Config, dir string, runnerArgs, appArgs []string) runner.Strategy {
	bin := cfg.Build.Runner
	if devRunner != "" {
		bin = devRunner
	}
	if bin == "" {
		bin = constants.DefaultRunnerBin
	}

	features := append([]string{}, cfg.Build.Features...)
	features = append(features, devFeatures...)

	s := runner.Strategy{
		Runner:            bin,
		Dir:               dir,
		Release:           devRelease,
		Target:            devTarget,
		Features:          features,
		NoDefaultFeatures: devNoDefaultFeatures,
		Args:              runnerArgs,
		RunArgs:           appArgs,
	}
	if v := cfg.Bundle.MacOS.MinimumSystemVersion; v != "" {
		s.ExtraEnv = append(s.ExtraEnv, constants.EnvDeploymentTarget+"="+v)
	}
	return s
}

func runBeforeDevCommand(projectDir string, cfg config.Config) error {
	hook := cfg.Build.BeforeDevCommand
	if hook == "" {
		return nil
	}
	style.PrintInfo("Running before-dev command: %s", hook)

	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/c"
	}
	if err := util.ExecStreaming(projectDir, shell, flag, hook); err != nil {
		return fmt.Errorf("before-dev command failed: %w", err)
	}
	return nil
}
