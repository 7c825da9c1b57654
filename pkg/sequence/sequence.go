package sequence

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out monotonically increasing int64 sequence numbers for
// ledger ordering. Snowflake IDs embed a millisecond timestamp plus a
// per-node counter, so they stay strictly increasing on a node even when the
// wall clock is skewed between replicas sharing a log.
type Generator struct {
	node *snowflake.Node
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &Generator{node: node}, nil
}

// Next returns the next sequence number.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}
