package sim

import (
	"context"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// RunVariants runs one simulation per config, each on its own clone of
// base, concurrently. Results are returned in config order. The first
// failing run cancels the others.
func RunVariants(ctx context.Context, base *dynamo.Store, params dynamo.Params, cfgs []Config, metrics func() []Metric) ([]*Result, error) {
	results := make([]*Result, len(cfgs))

	// Each variant already parallelises its force pass.
	perRun := params
	perRun.Workers = max(1, params.WorkerCount()/max(1, len(cfgs)))

	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		store := base.Clone()
		g.Go(func() error {
			s := New(store, perRun)
			if metrics != nil {
				for _, m := range metrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
