package alert

import "context"

// Client defines an interface for raising operational alerts about job
// failures. This decouples the job logic from the specific alert channel.
type Client interface {
	Notify(ctx context.Context, text string) error
}
