// Package constraint provides ready-made environment probes for gate
// nodes: presence of executables, files, and environment variables. Probes
// are deterministic snapshots of the process environment; the gate caches
// their verdicts per node until the registry is reset.
package constraint

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aretw0/palisade/pkg/domain"
)

// Func wraps an arbitrary probe function into a named constraint.
func Func(name string, probe func(ctx context.Context) bool) domain.Constraint {
	return domain.Constraint{Name: name, Probe: probe}
}

// CommandOnPath is satisfied when an executable with the given name exists
// in one of the searchPath directories, checked in order. The search-path
// list is plain input: callers obtain it from their configuration layer.
func CommandOnPath(name string, searchPath ...string) domain.Constraint {
	return domain.Constraint{
		Name: "command_on_path:" + name,
		Probe: func(context.Context) bool {
			for _, dir := range searchPath {
				info, err := os.Stat(filepath.Join(dir, name))
				if err != nil || info.IsDir() {
					continue
				}
				if info.Mode()&0o111 != 0 {
					return true
				}
			}
			return false
		},
	}
}

// FileExists is satisfied when the path names an existing file.
func FileExists(path string) domain.Constraint {
	return domain.Constraint{
		Name: "file_exists:" + path,
		Probe: func(context.Context) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		},
	}
}

// EnvironmentSet is satisfied when the environment variable is set to a
// non-empty value.
func EnvironmentSet(key string) domain.Constraint {
	return domain.Constraint{
		Name: "environment_set:" + key,
		Probe: func(context.Context) bool {
			return os.Getenv(key) != ""
		},
	}
}

// Always returns a constraint with a fixed verdict. Useful in tests and
// for feature kill-switches wired at process start.
func Always(satisfied bool) domain.Constraint {
	return domain.Constraint{
		Name: "always",
		Probe: func(context.Context) bool {
			return satisfied
		},
	}
}
