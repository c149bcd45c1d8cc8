package processor

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

// gate bounds how many items run one stage at the same time.
type gate struct {
	stage models.Stage
	slots chan struct{}
}

func newGate(stage models.Stage, size int) *gate {
	if size <= 0 {
		size = 1
	}
	return &gate{stage: stage, slots: make(chan struct{}, size)}
}

// acquire blocks for a slot or until ctx is done.
func (g *gate) acquire(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s slot: %w", g.stage, ctx.Err())
	}
}

func (g *gate) release() {
	<-g.slots
}

func (g *gate) inUse() int { return len(g.slots) }

func (g *gate) size() int { return cap(g.slots) }
