// Package workspace resolves the set of directories a dev session watches.
package workspace

import (
	"encoding/json"
	"fmt"

	"github.com/steveyegge/stoker/internal/util"
)

// Metadata describes the project as reported by the build tool.
type Metadata struct {
	WorkspaceRoot   string `json:"workspace_root"`
	TargetDirectory string `json:"target_directory"`
}

// MetadataProvider queries build metadata for a project directory.
// A failed query is fatal to the session; there is no retry.
type MetadataProvider interface {
	Query(projectDir string) (Metadata, error)
}

// CargoMetadata is the default provider, shelling out to cargo.
type CargoMetadata struct{}

// Query runs `cargo metadata` in the project directory and decodes the
// workspace root and target directory from its JSON output.
func (CargoMetadata) Query(projectDir string) (Metadata, error) {
	out, err := util.ExecWithOutput(projectDir, "cargo",
		"metadata", "--no-deps", "--format-version", "1")
	if err != nil {
		return Metadata{}, fmt.Errorf("cargo metadata: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal([]byte(out), &md); err != nil {
		return Metadata{}, fmt.Errorf("decoding cargo metadata: %w", err)
	}
	if md.WorkspaceRoot == "" {
		return Metadata{}, fmt.Errorf("cargo metadata reported no workspace root")
	}
	return md, nil
}
