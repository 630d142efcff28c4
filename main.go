// git-branch-stash rewrites a local commit graph into an ordered script of
// VCS operations: it protects upstream history, sweeps up branches that no
// longer need attention, rebases the rest onto a fresh base, folds fixup
// commits into their targets, and decides which branches are ready to push.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/epage/git-branch-stash/internal/logging"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		cancel()
	}()

	var cmd rootCmd
	kctx := kong.Parse(
		&cmd,
		kong.Name("git-branch-stash"),
		kong.Description("Rewrite a commit graph into a script of VCS operations."),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.UsageOnError(),
	)

	log := logging.New(os.Stderr, &logging.Options{Level: cmd.logLevel()})
	kctx.Bind(log)
	kctx.FatalIfErrorf(kctx.Run())
}
