package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init sets the snowflake node for this process. Call once at startup with a
// node ID unique across running instances.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// Ref returns a new transaction reference string. Falls back to node 0 when
// Init was never called (tests, tooling).
func Ref() string {
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		n, err := snowflake.NewNode(0)
		if err != nil {
			panic(err)
		}
		node = n
	}
	return node.Generate().String()
}
