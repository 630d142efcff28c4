// Package config loads the settings that drive a single run of the
// transformation pipeline: which branches are protected, the thresholds
// the heuristic protect passes use, and how fixup commits are handled.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/epage/git-branch-stash/internal/graph/ops"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk settings file, loaded once per run.
type Config struct {
	// Protected lists the branch names treated as upstream.
	// protect_branches seeds protection from exactly these branches.
	Protected []string `yaml:"protected"`

	// LargeBranchDepth is the max parameter for protect_large_branches.
	// Zero disables the pass.
	LargeBranchDepth int `yaml:"largeBranchDepth"`

	// OldBranchAge is the cutoff duration for protect_old_branches,
	// measured back from the time the run starts. Zero disables the
	// pass.
	OldBranchAge time.Duration `yaml:"oldBranchAge"`

	// TrimBranchAge is the cutoff duration for trim_old_branches. Zero
	// disables the pass.
	TrimBranchAge time.Duration `yaml:"trimBranchAge"`

	// ForeignUser, if set, enables protect_foreign_branches using this
	// identity string as "mine".
	ForeignUser string `yaml:"foreignUser"`

	// NewBase is the commit id or branch name rebase_branches moves
	// unprotected work onto.
	NewBase string `yaml:"newBase"`

	// Fixup selects how the fixup pass treats fixup commits. Defaults to
	// FixupIgnore (the YAML zero value) if unset.
	Fixup ops.FixupEffect `yaml:"fixup"`
}

// Load reads and parses a Config from r.
func Load(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}
