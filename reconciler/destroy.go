package reconciler

import (
	"context"
	"sort"

	"github.com/landform/landform/plan"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Destroy deletes every stored instance of a project.
//
// Instances are deleted in the exact reverse of the recorded apply order, so
// children are always gone before their parents, even if the declarations
// changed since the last apply. An instance that is already absent from the
// state is a no-op, which makes destroy safe to re-run after a partial
// failure.
func (r *Reconciler) Destroy(ctx context.Context, project string) (*Report, error) {
	logger := r.logger().With(
		zap.String("run", ksuid.New().String()),
		zap.String("project", project),
	)

	records, err := r.State.ListRecords(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "list state records")
	}
	order, err := r.State.GetOrder(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "get recorded order")
	}
	logger.Info("Destroy", zap.Int("resources", len(records)))

	// Records without a recorded position should not exist, but if they do
	// they are torn down first.
	inOrder := make(map[string]bool, len(order))
	for _, addr := range order {
		inOrder[addr] = true
	}
	var extras []string
	for addr := range records {
		if !inOrder[addr] {
			extras = append(extras, addr)
		}
	}
	sort.Strings(extras)

	run := &run{
		Project:  project,
		State:    r.State,
		Registry: r.Registry,
		Auth:     r.Auth,
		Logger:   logger,
		Backoff:  r.backoffAlgo(),
		Sem:      semaphore.NewWeighted(r.concurrency()),
		records:  records,
	}

	report := &Report{Project: project}
	walk := append(extras, plan.Reverse(order)...)
	for _, addr := range walk {
		rec, ok := run.getRecord(addr)
		if !ok {
			// Already destroyed, or never created.
			report.Nodes = append(report.Nodes, NodeResult{Address: addr, Status: StatusDestroyed})
			continue
		}
		if ctx.Err() != nil {
			report.Nodes = append(report.Nodes, NodeResult{Address: addr, Status: StatusPending, Err: ctx.Err()})
			continue
		}
		res := run.destroyRecord(ctx, rec)
		report.Nodes = append(report.Nodes, NodeResult{Address: addr, Status: res.status, Err: res.err})
	}

	// Keep the recorded order for whatever could not be destroyed.
	var remaining []string
	for _, addr := range append(extras, order...) {
		if run.hasRecord(addr) {
			remaining = append(remaining, addr)
		}
	}
	pctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.State.PutOrder(pctx, project, remaining); err != nil {
		return report, errors.Wrap(err, "record remaining order")
	}

	report.Destroyed = run.deleted
	logger.Info("Done", zap.Uint32("destroy", run.deleted))
	return report, nil
}
