package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/lakesync/internal/core/domain"
)

// ContentClient reads from the remote content platform.
type ContentClient interface {
	// ExportStream opens the dataset export as newline-delimited JSON.
	// A non-2xx response is returned as an error; the caller closes the reader.
	ExportStream(ctx context.Context) (io.ReadCloser, error)

	// Listen subscribes to live changes of documents matching query.
	// Events arrive in upstream order. Both channels are closed when the
	// subscription ends, which happens when ctx is cancelled or the feed
	// fails; a failure is sent on the error channel first.
	Listen(ctx context.Context, query string, tag string) (<-chan domain.ListenerEvent, <-chan error)

	// Close releases resources.
	Close() error
}
