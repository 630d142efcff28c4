package main

import (
	"context"
	"fmt"
	"iter"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/epage/git-branch-stash/internal/config"
	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/epage/git-branch-stash/internal/graph/ops"
	"github.com/epage/git-branch-stash/internal/logging"
	"github.com/epage/git-branch-stash/internal/vcsgit"
	"gopkg.in/yaml.v3"
)

type planCmd struct {
	Dir    string `short:"C" default:"." help:"Path to the git working tree"`
	Config string `default:".git-branch-stash.yml" help:"Path to the config file"`
	Root   string `arg:"" help:"Commit-ish the graph is rooted at (the common base of every branch considered)"`
}

func (cmd *planCmd) Run(ctx context.Context, log *logging.Logger) error {
	cfgFile, err := os.Open(cmd.Config)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer cfgFile.Close()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	repo, err := vcsgit.Open(cmd.Dir, log)
	if err != nil {
		return err
	}

	rootID, err := repo.ResolveCommit(ctx, cmd.Root)
	if err != nil {
		return fmt.Errorf("resolve root %q: %w", cmd.Root, err)
	}

	branches, err := vcsgit.LoadBranches(ctx, repo)
	if err != nil {
		return fmt.Errorf("load branches: %w", err)
	}

	var tips []graph.Hash
	for b := range branches.All() {
		base, ok, err := repo.MergeBase(ctx, rootID, b.ID)
		if err != nil {
			return fmt.Errorf("merge-base(%s, %s): %w", rootID, b.ID, err)
		}
		if ok && base == rootID {
			tips = append(tips, b.ID)
		}
	}

	g, err := vcsgit.BuildGraph(ctx, repo, rootID, tips)
	if err != nil {
		return fmt.Errorf("load commit graph: %w", err)
	}
	log.Infof("loaded %s from %d branch tip(s)", humanize.Comma(int64(g.Len())), len(tips))

	var protectedBranches []graph.Branch
	for b := range branches.All() {
		if slices.Contains(cfg.Protected, b.Name) {
			protectedBranches = append(protectedBranches, b)
		}
	}

	if err := ops.ProtectBranches(ctx, g, repo, staticBranches(protectedBranches)); err != nil {
		return fmt.Errorf("protect branches: %w", err)
	}

	if cfg.LargeBranchDepth > 0 {
		if names := ops.ProtectLargeBranches(g, cfg.LargeBranchDepth); len(names) > 0 {
			log.Debugf("protected large branches: %v", names)
		}
	}
	if cfg.OldBranchAge > 0 {
		cutoff := time.Now().Add(-cfg.OldBranchAge)
		if names := ops.ProtectOldBranches(g, cutoff); len(names) > 0 {
			log.Debugf("protected old branches (older than %s): %v", humanize.Time(cutoff), names)
		}
	}
	if cfg.ForeignUser != "" {
		if names := ops.ProtectForeignBranches(g, cfg.ForeignUser); len(names) > 0 {
			log.Debugf("protected foreign branches: %v", names)
		}
	}
	if cfg.TrimBranchAge > 0 {
		cutoff := time.Now().Add(-cfg.TrimBranchAge)
		if names := ops.TrimOldBranches(g, cutoff); len(names) > 0 {
			log.Infof("trimmed branches (older than %s): %v", humanize.Time(cutoff), names)
		}
	}

	if cfg.NewBase != "" {
		newBaseID, err := repo.ResolveCommit(ctx, cfg.NewBase)
		if err != nil {
			return fmt.Errorf("resolve new base %q: %w", cfg.NewBase, err)
		}
		ops.RebaseBranches(g, newBaseID)
	}

	ops.DropByTreeID(g)
	ops.Fixup(g, cfg.Fixup)
	ops.Pushable(g, log)

	script := ops.ToScript(g)

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(newScriptDoc(script))
}

// staticBranches adapts a plain slice of branches to [ops.Branches] for the
// already-filtered set of branches a config names protected.
type staticBranches []graph.Branch

func (b staticBranches) All() iter.Seq[graph.Branch] {
	return func(yield func(graph.Branch) bool) {
		for _, br := range b {
			if !yield(br) {
				return
			}
		}
	}
}

func (b staticBranches) ContainsOID(id graph.Hash) bool {
	for _, br := range b {
		if br.ID == id {
			return true
		}
	}
	return false
}

func (b staticBranches) OIDs() iter.Seq[graph.Hash] {
	return func(yield func(graph.Hash) bool) {
		for _, br := range b {
			if !yield(br.ID) {
				return
			}
		}
	}
}

// scriptDoc is the YAML-friendly rendering of a [ops.Script] tree; the
// executor this script is handed to is out of scope here, so the encoding
// only needs to be a faithful, readable mirror of the command tree.
type scriptDoc struct {
	Commands   []string     `yaml:"commands"`
	Dependents []*scriptDoc `yaml:"dependents,omitempty"`
}

func newScriptDoc(s *ops.Script) *scriptDoc {
	if s == nil {
		return &scriptDoc{}
	}
	d := &scriptDoc{Commands: make([]string, len(s.Commands))}
	for i, cmd := range s.Commands {
		d.Commands[i] = renderCommand(cmd)
	}
	for _, dep := range s.Dependents {
		d.Dependents = append(d.Dependents, newScriptDoc(dep))
	}
	return d
}

func renderCommand(cmd ops.Command) string {
	if cmd.Branch != "" {
		return fmt.Sprintf("%s %s", cmd.Kind, cmd.Branch)
	}
	return fmt.Sprintf("%s %s", cmd.Kind, cmd.ID)
}
