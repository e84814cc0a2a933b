// Package sink defines the durable-storage boundary for finalized records.
// The pipeline depends only on the narrow "write one record, report
// success/failure" contract; persistence is never retried.
package sink

import (
	"context"

	"github.com/saviohq/agent/pkg/types"
)

// Sink accepts one finalized record per probe cycle.
type Sink interface {
	Write(ctx context.Context, rec types.NetworkHealthRecord) error
}
