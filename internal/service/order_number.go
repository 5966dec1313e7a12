package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// OrderNumberGenerator produces human-readable order numbers.
type OrderNumberGenerator interface {
	Next() string
}

// SnowflakeNumbers issues ORD-<id> numbers. Ids embed a millisecond
// timestamp, the node id and a per-node sequence, so numbers stay unique
// across replicas as long as each replica runs with its own node id.
type SnowflakeNumbers struct {
	node *snowflake.Node
}

// NewSnowflakeNumbers creates a generator for the given node (0..1023).
func NewSnowflakeNumbers(nodeID int64) (*SnowflakeNumbers, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node: %w", err)
	}
	return &SnowflakeNumbers{node: node}, nil
}

func (g *SnowflakeNumbers) Next() string {
	return "ORD-" + g.node.Generate().String()
}
