package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// End-to-end walks of the canvas surface, mirroring how the session layer
// drives it: scrape node feeding a prompt node, partial outputs, deletions.

func TestCanvas_ScrapeFeedsPrompt(t *testing.T) {
	c := New()

	c.Connect(models.Connection{SourceNodeID: "firecrawl-1", TargetNodeID: "openai-1"})
	c.SetOutput("firecrawl-1", models.OutputRecord{
		NodeKind: models.KindFetch,
		Content:  "# Hello",
		Label:    "http://x.com",
	})

	inputs := c.Inputs("openai-1")
	require.Len(t, inputs, 1)
	assert.Equal(t, "firecrawl-1", inputs[0].NodeID)
	assert.Equal(t, "# Hello", inputs[0].Content)
	assert.Equal(t, "http://x.com", inputs[0].Label)
	assert.False(t, inputs[0].ProducedAt.IsZero())
}

func TestCanvas_PendingSourceIsInvisible(t *testing.T) {
	c := New()

	c.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})
	c.Connect(models.Connection{SourceNodeID: "b", TargetNodeID: "t"})
	c.SetOutput("a", models.OutputRecord{Content: "from a"})

	inputs := c.Inputs("t")
	require.Len(t, inputs, 1, "b never produced and must not appear")
	assert.Equal(t, "a", inputs[0].NodeID)
}

func TestCanvas_EmptyOutputIsInvisible(t *testing.T) {
	c := New()

	c.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})
	c.SetOutput("a", models.OutputRecord{Content: ""})

	assert.Empty(t, c.Inputs("t"))
}

func TestCanvas_RemovedNodeLeavesNothingBehind(t *testing.T) {
	c := New()

	c.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})
	c.SetOutput("a", models.OutputRecord{Content: "data"})

	c.RemoveNode("a")

	assert.Empty(t, c.Inputs("t"))
	assert.Empty(t, c.IncomingEdges("t"))

	_, ok := c.Output("a")
	assert.False(t, ok)
}

func TestCanvas_TripleConnectYieldsOneEdge(t *testing.T) {
	c := New()

	for range 3 {
		c.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})
	}

	assert.Len(t, c.IncomingEdges("t"), 1)
}

func TestCanvas_ReconnectionResolvesExistingOutput(t *testing.T) {
	c := New()

	c.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})
	c.SetOutput("a", models.OutputRecord{Content: "survivor"})
	c.Disconnect("a", "t")

	require.Empty(t, c.Inputs("t"))

	c.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t2"})

	inputs := c.Inputs("t2")
	require.Len(t, inputs, 1)
	assert.Equal(t, "survivor", inputs[0].Content)
}

func TestCanvas_LastWriteWins(t *testing.T) {
	c := New()

	c.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})
	c.SetOutput("a", models.OutputRecord{Content: "first", Label: "one"})
	c.SetOutput("a", models.OutputRecord{Content: "second"})

	inputs := c.Inputs("t")
	require.Len(t, inputs, 1)
	assert.Equal(t, "second", inputs[0].Content)
	assert.Empty(t, inputs[0].Label)
}

func TestCanvas_Counts(t *testing.T) {
	c := New()

	c.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "b"})
	c.Connect(models.Connection{SourceNodeID: "b", TargetNodeID: "c"})
	c.SetOutput("a", models.OutputRecord{Content: "data"})

	assert.Equal(t, 2, c.EdgeCount())
	assert.Equal(t, 1, c.OutputCount())
}

func TestCanvas_InstancesAreIndependent(t *testing.T) {
	one := New()
	two := New()

	var notified []string

	one.Subscribe(InputsObserverFunc(func(nodeID string) {
		notified = append(notified, nodeID)
	}))

	one.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})
	one.SetOutput("a", models.OutputRecord{Content: "only on one"})

	two.Connect(models.Connection{SourceNodeID: "a", TargetNodeID: "t"})

	assert.Len(t, one.Inputs("t"), 1)
	assert.Empty(t, two.Inputs("t"), "canvases must not share registries")
	assert.Equal(t, []string{"t", "t"}, notified, "edge create then output set")
	assert.Equal(t, 1, two.EdgeCount())
}
