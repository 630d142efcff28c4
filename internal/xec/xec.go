package xec

import "os/exec"

// ExitError is returned from Wait, Run, or Output when the underlying
// process exits with a non-zero exit code. vcsgit uses this to tell a git
// command that ran and rejected its input (an unresolvable commit-ish)
// apart from one that never ran at all.
type ExitError = exec.ExitError

// LookPath searches for an executable named file in the directories named
// by the PATH environment variable. vcsgit.Open uses this to fail with a
// clear "git not found" error before issuing its first real command.
func LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
