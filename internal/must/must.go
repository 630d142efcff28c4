// Package must provides the runtime assertions the transformation passes
// use to enforce the preconditions the graph is supposed to guarantee —
// a node reachable from another node's Children actually exists in the
// Graph, an action scheduled on a node isn't one a prior pass should have
// already ruled out, and so on. A violation here is the "precondition
// violation" error kind: a programming fault in a pass or its caller, not
// a condition a VCS query or a malformed repository can trigger, so it
// crashes loudly rather than propagating as a normal error.
package must

import "fmt"

// Bef panics if b is false. Use for invariants a pass relies on holding,
// such as an id looked up via a Children set actually resolving to a node.
func Bef(b bool, format string, args ...any) {
	if !b {
		panicErrorf(format, args...)
	}
}

// NotBef panics if b is true. Use for the inverse shape, such as asserting
// a node a pass is about to act on hasn't already been marked Protected by
// an earlier one.
func NotBef(b bool, format string, args ...any) {
	if b {
		panicErrorf(format, args...)
	}
}

// BeEqualf panics if a != b, reporting both sides. Used where two
// independently derived values — for example, the node count before and
// after a full topological sort — must agree.
func BeEqualf[T comparable](a, b T, format string, args ...any) {
	if a != b {
		panicErrorf("%v\nwant a == b\na = %v\nb = %v",
			fmt.Errorf(format, args...), a, b,
		)
	}
}

// NotBeNilf panics if v is nil. Used for dependencies a caller is required
// to supply, such as a logging handler that must already be configured.
func NotBeNilf(v any, format string, args ...any) {
	if v == nil {
		panicErrorf(format, args...)
	}
}

func panicErrorf(format string, args ...any) {
	panic(fmt.Errorf(format, args...))
}
