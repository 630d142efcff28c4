package main

import "github.com/epage/git-branch-stash/internal/logging"

type globalOptions struct {
	Verbose bool `short:"v" help:"Enable debug logging"`
	Quiet   bool `short:"q" help:"Only log warnings and errors"`
}

func (o *globalOptions) logLevel() logging.Level {
	switch {
	case o.Verbose:
		return logging.LevelDebug
	case o.Quiet:
		return logging.LevelWarn
	default:
		return logging.LevelInfo
	}
}

type rootCmd struct {
	globalOptions

	Plan    planCmd    `cmd:"" help:"Rewrite the commit graph and print the resulting script"`
	Version versionCmd `cmd:"" help:"Print version information"`
}
