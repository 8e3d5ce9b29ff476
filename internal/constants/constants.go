// Package constants defines shared constant values used throughout stoker.
// Centralizing these magic strings improves maintainability and consistency.
package constants

import "time"

// Timing constants for the watch/restart loop.
const (
	// DebounceWindow is how long raw filesystem notifications for a path
	// are allowed to settle before one change event is emitted.
	DebounceWindow = 1 * time.Second

	// DebounceFlushInterval is how often pending notifications are checked
	// against the debounce window.
	DebounceFlushInterval = 100 * time.Millisecond

	// EventMailboxSize bounds the change-event channel between the watcher
	// goroutine and the supervisor loop. The watcher blocks when it fills;
	// the supervisor is the only consumer.
	EventMailboxSize = 64
)

// Well-known file names.
const (
	// ConfigFileName is the project configuration file. A change event whose
	// final path component equals this name triggers a config reload and
	// manifest rewrite instead of a restart, wherever it appears in the
	// watched scope.
	ConfigFileName = "stoker.toml"

	// ManifestFileName is the generated build manifest written next to the
	// project configuration.
	ManifestFileName = "Stoker.lock"

	// WorkspaceManifestName is the build tool's manifest, read at the
	// workspace root to discover member directories.
	WorkspaceManifestName = "Cargo.toml"

	// CustomIgnoreFilename is recognized in any directory under a watched
	// root and adds gitignore-style patterns for that directory.
	CustomIgnoreFilename = ".stokerignore"

	// DefaultIgnoreDirName is the per-machine directory (under the system
	// temp dir) holding the auto-created default ignore file.
	DefaultIgnoreDirName = ".stoker-dev"

	// DefaultIgnoreFileName is the seeded default ignore file inside
	// DefaultIgnoreDirName.
	DefaultIgnoreFileName = ".gitignore"

	// RuntimeDirName is the project-local directory for stoker's own state
	// (run logs). It is always ignored by the watcher.
	RuntimeDirName = ".stoker"
)

// Environment variable names. These are read once at startup by
// config.ReadEnv and threaded through as explicit fields; nothing else
// reads them directly.
const (
	// EnvIgnoreFile points at an extra ignore file merged into the watcher
	// ignore rules.
	EnvIgnoreFile = "STOKER_DEV_WATCHER_IGNORE_FILE"

	// EnvTrayVariant selects the tray library variant on Linux bundles.
	EnvTrayVariant = "STOKER_TRAY"

	// EnvSigningIdentity overrides the macOS signing identity.
	EnvSigningIdentity = "APPLE_SIGNING_IDENTITY"

	// EnvProviderShortName overrides the macOS provider short name.
	EnvProviderShortName = "APPLE_PROVIDER_SHORT_NAME"

	// EnvDeploymentTarget is exported to the child process when the config
	// declares a minimum macOS system version.
	EnvDeploymentTarget = "MACOSX_DEPLOYMENT_TARGET"
)

// Defaults for the run strategy.
const (
	// DefaultRunnerBin is the build tool used to compile and run the
	// supervised application when the config does not name one.
	DefaultRunnerBin = "cargo"
)
