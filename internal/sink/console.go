package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/saviohq/agent/pkg/types"
)

// Console emits the record to a writer as indented JSON. It is the agent's
// primary output channel; the database sink is secondary and its failure
// never suppresses console emission.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Write(ctx context.Context, rec types.NetworkHealthRecord) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("emit record: %w", err)
	}
	return nil
}
