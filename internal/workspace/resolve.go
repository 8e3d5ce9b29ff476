package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/steveyegge/stoker/internal/constants"
)

// Scope is the ordered set of root directories a session watches.
// It is computed once at startup and never mutated.
type Scope struct {
	Roots []string
}

// workspaceManifest is the slice of Cargo.toml we care about: the declared
// member directories of a multi-crate workspace.
type workspaceManifest struct {
	Workspace *workspaceSection `toml:"workspace"`
}

type workspaceSection struct {
	Members []string `toml:"members"`
}

// Resolve produces the watch scope for projectDir.
//
// When the project directory is itself the workspace root, the scope is that
// single directory. Otherwise the scope is the workspace's declared member
// directories resolved against the root; a workspace without a member list
// falls back to the project directory alone.
func Resolve(projectDir string, provider MetadataProvider) (Scope, error) {
	md, err := provider.Query(projectDir)
	if err != nil {
		return Scope{}, err
	}

	absProject, err := filepath.Abs(projectDir)
	if err != nil {
		return Scope{}, fmt.Errorf("resolving project dir: %w", err)
	}

	root := filepath.Clean(md.WorkspaceRoot)
	if absProject == root {
		return Scope{Roots: []string{absProject}}, nil
	}

	members, err := loadMembers(root)
	if err != nil {
		return Scope{}, err
	}
	if len(members) == 0 {
		return Scope{Roots: []string{absProject}}, nil
	}

	roots := make([]string, 0, len(members))
	for _, m := range members {
		roots = append(roots, filepath.Join(root, m))
	}
	return Scope{Roots: roots}, nil
}

// loadMembers reads the [workspace] members list from the root manifest.
// A root without a workspace section yields no members.
func loadMembers(workspaceRoot string) ([]string, error) {
	path := filepath.Join(workspaceRoot, constants.WorkspaceManifestName)

	var manifest workspaceManifest
	if _, err := toml.DecodeFile(path, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if manifest.Workspace == nil {
		return nil, nil
	}
	return manifest.Workspace.Members, nil
}
