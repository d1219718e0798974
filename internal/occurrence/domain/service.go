package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Processor drives one occurrence through the notification x channel x
// assignment loop.
type Processor interface {
	// Process dispatches every pending (notification, channel, assignment)
	// triple for the occurrence. It returns true when the full pass
	// completed; false when a render or dispatch error aborted the run with
	// progress persisted up to that point. Re-invocation is safe: assignment
	// ids recorded in the delivered checkpoint are never dispatched again.
	Process(ctx context.Context, id snowflake.ID) (bool, error)
}
