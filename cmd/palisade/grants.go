package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/palisade/pkg/adapters/memory"
	"gopkg.in/yaml.v3"
)

// grantsFile is the YAML shape accepted by --grants.
type grantsFile struct {
	Grants []grantSpec `yaml:"grants"`
}

type grantSpec struct {
	Principal  string `yaml:"principal"`
	Capability string `yaml:"capability"`
	// Subjects limits the grant; empty means any subject.
	Subjects []string `yaml:"subjects"`
}

// loadGrants reads a grants file into a fresh in-memory authorizer.
func loadGrants(path string) (*memory.Authorizer, error) {
	auth := memory.New()
	if path == "" {
		return auth, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grants file: %w", err)
	}
	var file grantsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse grants file: %w", err)
	}

	ctx := context.Background()
	for _, g := range file.Grants {
		if g.Principal == "" || g.Capability == "" {
			return nil, fmt.Errorf("grants file: every grant needs principal and capability")
		}
		if err := auth.Grant(ctx, g.Principal, g.Capability, g.Subjects...); err != nil {
			return nil, err
		}
	}
	return auth, nil
}
