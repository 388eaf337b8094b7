package report

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/liveable/internal/result"
)

// Archive kinds.
const (
	KindReport     = "report"
	KindComparison = "comparison"
)

// Comparison holds two independently built reports.
type Comparison struct {
	A result.Outcome[*Report] `json:"a"`
	B result.Outcome[*Report] `json:"b"`
}

// Compare builds both reports concurrently. A failure on one side is recorded
// in its outcome and never cancels the other.
func (b *Builder) Compare(ctx context.Context, zipA, zipB string) *Comparison {
	inner := *b
	inner.archive = nil

	var c Comparison
	var g errgroup.Group
	g.Go(func() error {
		c.A = result.From(inner.Build(ctx, zipA))
		return nil
	})
	g.Go(func() error {
		c.B = result.From(inner.Build(ctx, zipB))
		return nil
	})
	_ = g.Wait()

	if b.archive != nil {
		b.save(ctx, KindComparison, []string{zipA, zipB}, &c)
	}
	return &c
}
