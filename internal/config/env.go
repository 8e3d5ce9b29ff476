package config

import (
	"os"

	"github.com/steveyegge/stoker/internal/constants"
)

// Env holds every environment override stoker recognizes. It is read once at
// startup and threaded through as a value; downstream code never calls
// os.Getenv.
type Env struct {
	// WatcherIgnoreFile is an extra ignore file merged into the watcher
	// rules (STOKER_DEV_WATCHER_IGNORE_FILE).
	WatcherIgnoreFile string

	// TrayVariant overrides bundle.tray-variant (STOKER_TRAY).
	TrayVariant string

	// SigningIdentity overrides bundle.macos.signing-identity
	// (APPLE_SIGNING_IDENTITY).
	SigningIdentity string

	// ProviderShortName overrides bundle.macos.provider-short-name
	// (APPLE_PROVIDER_SHORT_NAME).
	ProviderShortName string
}

// ReadEnv is the single environment ingestion boundary.
func ReadEnv() Env {
	return Env{
		WatcherIgnoreFile: os.Getenv(constants.EnvIgnoreFile),
		TrayVariant:       os.Getenv(constants.EnvTrayVariant),
		SigningIdentity:   os.Getenv(constants.EnvSigningIdentity),
		ProviderShortName: os.Getenv(constants.EnvProviderShortName),
	}
}
