package graph_test

import (
	"testing"

	"github.com/epage/git-branch-stash/internal/graph"
	"github.com/stretchr/testify/assert"
)

func TestAction_predicates(t *testing.T) {
	assert.True(t, graph.Protected.IsProtected())
	assert.False(t, graph.Pick.IsProtected())

	assert.True(t, graph.Delete.IsDelete())
	assert.False(t, graph.Squash.IsDelete())

	assert.True(t, graph.Pick.IsPick())
	assert.True(t, graph.Squash.IsSquash())
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "pick", graph.Pick.String())
	assert.Equal(t, "protected", graph.Protected.String())
	assert.Equal(t, "squash", graph.Squash.String())
	assert.Equal(t, "delete", graph.Delete.String())
}
