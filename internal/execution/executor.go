package execution

import (
	"context"

	"ptx/internal/config"
	"ptx/internal/tree"
)

// Executor runs a batch of nodes, reporting every transition through run
type Executor interface {
	Execute(ctx context.Context, run *tree.Run, settings config.Framework, nodes []*tree.Node)
}
