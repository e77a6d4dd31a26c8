package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/pkg/models"
)

func TestConnectionGraph_Add(t *testing.T) {
	graph := NewConnectionGraph()

	conn, ok := graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "b"})
	require.True(t, ok)
	assert.NotEmpty(t, conn.ID)
	assert.Equal(t, 1, graph.Count())
}

func TestConnectionGraph_AddDuplicateIsNoOp(t *testing.T) {
	graph := NewConnectionGraph()

	first, ok := graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "b"})
	require.True(t, ok)

	second, ok := graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "b"})
	assert.False(t, ok)
	assert.Equal(t, first.ID, second.ID, "duplicate add returns the existing edge")
	assert.Equal(t, 1, graph.Count())
}

func TestConnectionGraph_AddDuplicateIgnoresHandles(t *testing.T) {
	graph := NewConnectionGraph()

	graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "b", SourceHandle: "out"})

	_, ok := graph.Add(models.Connection{
		SourceNodeID: "a",
		TargetNodeID: "b",
		SourceHandle: "other",
		TargetHandle: "in",
	})
	assert.False(t, ok, "handles never distinguish edges")
	assert.Equal(t, 1, graph.Count())
}

func TestConnectionGraph_ReverseDirectionIsDistinct(t *testing.T) {
	graph := NewConnectionGraph()

	graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "b"})

	_, ok := graph.Add(models.Connection{SourceNodeID: "b", TargetNodeID: "a"})
	assert.True(t, ok)
	assert.Equal(t, 2, graph.Count())
}

func TestConnectionGraph_Remove(t *testing.T) {
	graph := NewConnectionGraph()
	graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "b", SourceHandle: "out"})

	edge, ok := graph.Remove("a", "b")
	require.True(t, ok)
	assert.Equal(t, "out", edge.SourceHandle)
	assert.Equal(t, 0, graph.Count())
}

func TestConnectionGraph_RemoveAbsentIsNoOp(t *testing.T) {
	graph := NewConnectionGraph()
	graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "b"})

	_, ok := graph.Remove("a", "c")
	assert.False(t, ok)
	assert.Equal(t, 1, graph.Count())
}

func TestConnectionGraph_IncomingInsertionOrder(t *testing.T) {
	graph := NewConnectionGraph()

	graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})
	graph.Add(models.Connection{SourceNodeID: "b", TargetNodeID: "t"})
	graph.Add(models.Connection{SourceNodeID: "c", TargetNodeID: "other"})
	graph.Add(models.Connection{SourceNodeID: "d", TargetNodeID: "t"})

	incoming := graph.Incoming("t")
	require.Len(t, incoming, 3)
	assert.Equal(t, "a", incoming[0].SourceNodeID)
	assert.Equal(t, "b", incoming[1].SourceNodeID)
	assert.Equal(t, "d", incoming[2].SourceNodeID)
}

func TestConnectionGraph_IncomingUnknownNode(t *testing.T) {
	graph := NewConnectionGraph()

	assert.Empty(t, graph.Incoming("nobody"))
}

func TestConnectionGraph_RemoveAllFor(t *testing.T) {
	graph := NewConnectionGraph()

	graph.Add(models.Connection{SourceNodeID: "n", TargetNodeID: "a"})
	graph.Add(models.Connection{SourceNodeID: "b", TargetNodeID: "n"})
	graph.Add(models.Connection{SourceNodeID: "x", TargetNodeID: "y"})

	removed := graph.RemoveAllFor("n")
	assert.Len(t, removed, 2)
	assert.Equal(t, 1, graph.Count())
	assert.Empty(t, graph.Incoming("n"))
	assert.Empty(t, graph.TargetsOf("n"))
}

func TestConnectionGraph_TargetsOf(t *testing.T) {
	graph := NewConnectionGraph()

	graph.Add(models.Connection{SourceNodeID: "s", TargetNodeID: "t1"})
	graph.Add(models.Connection{SourceNodeID: "s", TargetNodeID: "t2"})
	graph.Add(models.Connection{SourceNodeID: "other", TargetNodeID: "t3"})

	assert.Equal(t, []string{"t1", "t2"}, graph.TargetsOf("s"))
}

func TestConnectionGraph_EdgesReturnsCopy(t *testing.T) {
	graph := NewConnectionGraph()
	graph.Add(models.Connection{SourceNodeID: "a", TargetNodeID: "b"})

	edges := graph.Edges()
	require.Len(t, edges, 1)

	edges[0].SourceNodeID = "mutated"

	assert.Equal(t, "a", graph.Edges()[0].SourceNodeID)
}
