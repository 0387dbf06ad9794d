package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fenwick-industrial/modbus-gateway/catalog"
	"github.com/fenwick-industrial/modbus-gateway/common"
)

// Invocation is one scheduled compile+dispatch against a single catalog.
// Each invocation carries its own MaxByte, so the scheduler can run several
// concurrently without any of them sharing coalescing state (spec §5:
// "thread-local or explicitly passed, never global").
type Invocation struct {
	Name    string
	Catalog catalog.Catalog
	Client  common.Client
	Values  ValueSource
}

// RunAll compiles and dispatches every invocation concurrently, returning
// the first error encountered (cancelling the remaining invocations via
// ctx) or nil if all succeeded. It returns the compiled Plan for each
// invocation in the same order as invocations, regardless of dispatch
// outcome, so callers can still inspect what was compiled after a
// dispatch failure.
func RunAll(ctx context.Context, invocations []Invocation, logger common.LoggerInterface, metrics *Metrics) ([]Plan, error) {
	plans := make([]Plan, len(invocations))

	g, gctx := errgroup.WithContext(ctx)
	for i, inv := range invocations {
		i, inv := i, inv
		g.Go(func() error {
			plan, err := Compile(inv.Catalog, inv.Values, logger.WithFields(map[string]interface{}{"invocation": inv.Name}))
			if err != nil {
				return err
			}
			plans[i] = plan
			if metrics != nil {
				metrics.Observe(plan)
			}

			if _, err := ExecuteReads(gctx, inv.Client, plan.ReadCmds); err != nil {
				return err
			}
			return ExecuteWrites(gctx, inv.Client, plan.WriteCmds)
		})
	}

	if err := g.Wait(); err != nil {
		return plans, err
	}
	return plans, nil
}
