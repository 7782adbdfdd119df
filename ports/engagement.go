package ports

import (
	"context"

	"lcgwalk/domain/core"
)

// Service is a collaborator with an explicit lifecycle. Owners call Init
// before first use and Teardown when they are done.
type Service interface {
	Init(ctx context.Context) error
	Teardown() error
}

// EngagementService tracks which agents are currently engaging a target
// (the battle-music manager in a game).
type EngagementService interface {
	Service

	// Request registers agent as engaged. Repeated requests are no-ops.
	Request(agent core.AgentID)

	// Release unregisters agent. Releasing an unknown agent is a no-op.
	Release(agent core.AgentID)
}
