package reconciler

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/landform/landform/graph"
	"github.com/landform/landform/plan"
	"github.com/landform/landform/resource"
	"github.com/landform/landform/storage"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default maximum concurrency to use.
//
// In practice, the reconciler is bound by network i/o against the cloud
// control plane.
var DefaultConcurrency = 10

// storeTimeout bounds state writes that happen after the run context was
// cancelled.
const storeTimeout = 5 * time.Second

// StateStorage persists resource state between runs.
type StateStorage interface {
	PutRecord(ctx context.Context, project string, rec storage.Record) error
	DeleteRecord(ctx context.Context, project, address string) error
	ListRecords(ctx context.Context, project string) (map[string]storage.Record, error)
	PutOrder(ctx context.Context, project string, order []string) error
	GetOrder(ctx context.Context, project string) ([]string, error)
}

// A Reconciler realizes planned changes.
//
// See package doc for details.
type Reconciler struct {
	State    StateStorage
	Registry *resource.Registry
	Auth     resource.AuthProvider

	// Concurrency sets the maximum allowed concurrency to use.
	// If not set, DefaultConcurrency is used.
	Concurrency uint

	// Logger logs run updates. If not set, logs are discarded.
	Logger *zap.Logger

	// Backoff algorithm used for retrying transient provider errors. If
	// not set, exponential backoff capped at 3 retries is used.
	Backoff func() backoff.BackOff
}

func (r *Reconciler) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Reconciler) backoffAlgo() func() backoff.BackOff {
	if r.Backoff != nil {
		return r.Backoff
	}
	return func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	}
}

func (r *Reconciler) concurrency() int64 {
	if r.Concurrency == 0 {
		return int64(DefaultConcurrency)
	}
	return int64(r.Concurrency)
}

// Apply realizes the plan for a project.
//
// Every instance ends in a terminal state recorded in the report: done,
// failed, blocked (a dependency did not reach done) or pending (cancelled
// before start). Instances that are no longer declared are deleted, children
// before parents. The returned error is only set for faults that stop the
// whole run, such as the state store becoming unavailable; provider failures
// are reported per instance instead.
func (r *Reconciler) Apply(ctx context.Context, project string, g *graph.Graph, p *plan.Plan, base *hcl.EvalContext) (*Report, error) {
	logger := r.logger().With(
		zap.String("run", ksuid.New().String()),
		zap.String("project", project),
	)
	logger.Info("Apply", zap.Int("resources", len(p.Steps)))

	records, err := r.State.ListRecords(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "list state records")
	}
	priorOrder, err := r.State.GetOrder(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "get recorded order")
	}

	run := &run{
		Project:  project,
		Graph:    g,
		State:    r.State,
		Registry: r.Registry,
		Auth:     r.Auth,
		Logger:   logger,
		Backoff:  r.backoffAlgo(),
		Base:     base,
		Sem:      semaphore.NewWeighted(r.concurrency()),
		records:  records,
		tasks:    make(map[string]*nodeTask),
	}

	var wg sync.WaitGroup
	for _, n := range p.Steps {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			run.process(ctx, n)
		}()
	}
	wg.Wait()

	report := &Report{Project: project}
	inPlan := make(map[string]bool, len(p.Steps))
	for _, n := range p.Steps {
		addr := n.Addr.String()
		inPlan[addr] = true
		res := run.result(addr)
		report.Nodes = append(report.Nodes, NodeResult{
			Address: addr,
			Status:  res.status,
			Err:     res.err,
		})
	}

	report.Nodes = append(report.Nodes, run.prune(ctx, priorOrder)...)

	// Record the order a later destroy walks in reverse. Instances keep
	// their position from the previous run; strays that could not be
	// removed stay in front so they are destroyed last.
	var order []string
	for _, addr := range priorOrder {
		if !inPlan[addr] && run.hasRecord(addr) {
			order = append(order, addr)
		}
	}
	for _, addr := range p.Addresses() {
		if run.hasRecord(addr) {
			order = append(order, addr)
		}
	}
	pctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.State.PutOrder(pctx, project, order); err != nil {
		return report, errors.Wrap(err, "record apply order")
	}

	report.Created = run.created
	report.Updated = run.updated
	report.Deleted = run.deleted
	logger.Info(
		"Done",
		zap.Uint32("create", run.created),
		zap.Uint32("update", run.updated),
		zap.Uint32("delete", run.deleted),
	)
	return report, nil
}

type run struct {
	Project  string
	Graph    *graph.Graph
	State    StateStorage
	Registry *resource.Registry
	Auth     resource.AuthProvider
	Logger   *zap.Logger
	Backoff  func() backoff.BackOff
	Base     *hcl.EvalContext
	Sem      *semaphore.Weighted

	mu      sync.Mutex
	records map[string]storage.Record
	tasks   map[string]*nodeTask

	created, updated, deleted uint32
}

// A nodeTask realizes an instance exactly once, no matter how many dependents
// wait on it.
type nodeTask struct {
	once sync.Once
	res  nodeResult
}

type nodeResult struct {
	status Status
	def    resource.Definition
	err    error
}

func failed(err error) nodeResult {
	return nodeResult{status: StatusFailed, err: err}
}

func (r *run) task(addr string) *nodeTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[addr]
	if !ok {
		t = &nodeTask{}
		r.tasks[addr] = t
	}
	return t
}

func (r *run) process(ctx context.Context, n *graph.Node) nodeResult {
	t := r.task(n.Addr.String())
	t.once.Do(func() { t.res = r.realize(ctx, n) })
	return t.res
}

// result returns the recorded result for an instance. Only valid once all
// tasks have finished.
func (r *run) result(addr string) nodeResult {
	return r.task(addr).res
}

func (r *run) getRecord(addr string) (storage.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[addr]
	return rec, ok
}

func (r *run) hasRecord(addr string) bool {
	_, ok := r.getRecord(addr)
	return ok
}

func (r *run) setRecord(rec storage.Record) {
	r.mu.Lock()
	r.records[rec.Address] = rec
	r.mu.Unlock()
}

func (r *run) dropRecord(addr string) {
	r.mu.Lock()
	delete(r.records, addr)
	r.mu.Unlock()
}

func (r *run) realize(ctx context.Context, n *graph.Node) nodeResult {
	addr := n.Addr.String()
	logger := r.Logger.With(zap.String("resource", addr))

	// Wait for parents before acquiring the semaphore, as otherwise we can
	// needlessly block on low concurrency limits, and end up in a deadlock
	// with concurrency=1.
	var wg sync.WaitGroup
	var mu sync.Mutex
	var notDone []string
	for _, dep := range n.Deps {
		dep := dep
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := r.process(ctx, r.Graph.Get(dep))
			if res.status != StatusDone {
				mu.Lock()
				notDone = append(notDone, dep)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(notDone) > 0 {
		sort.Strings(notDone)
		logger.Info("Blocked", zap.Strings("on", notDone))
		return nodeResult{
			status: StatusBlocked,
			err:    errors.Errorf("dependencies not realized: %s", strings.Join(notDone, ", ")),
		}
	}

	if err := r.Sem.Acquire(ctx, 1); err != nil {
		// Cancelled before the instance was started.
		return nodeResult{status: StatusPending, err: err}
	}
	defer r.Sem.Release(1)

	evalCtx, err := r.evalContext(n)
	if err != nil {
		return failed(err)
	}

	def := r.Registry.New(n.Addr.Type)
	if def == nil {
		return failed(errors.Errorf("type not registered: %q", n.Addr.Type))
	}
	if diags := gohcl.DecodeBody(n.Config, evalCtx, def); diags.HasErrors() {
		return failed(errors.Wrap(diags, "decode config"))
	}
	if err := resource.Validate(def); err != nil {
		return failed(errors.Wrap(err, "validate"))
	}
	hash := resource.Hash(def)

	rec, exists := r.getRecord(addr)
	var prev resource.Definition
	if exists {
		prev = r.Registry.New(rec.Type)
		if prev == nil {
			return failed(errors.Errorf("stored type not registered: %q", rec.Type))
		}
		if err := resource.UnmarshalDefinition(prev, rec.Def); err != nil {
			return failed(errors.Wrap(err, "decode stored state"))
		}
		if rec.Hash == hash {
			// Inputs unchanged; adopt the stored outputs without
			// calling the provider.
			if err := resource.UnmarshalDefinition(def, rec.Def); err != nil {
				return failed(errors.Wrap(err, "decode stored state"))
			}
			logger.Debug("No changes required")
			return nodeResult{status: StatusDone, def: def}
		}
	}

	if exists && forceNewChanged(def, prev) {
		logger.Info("Replacing resource")
		if err := r.exec(ctx, logger, func() error {
			return prev.Delete(ctx, &resource.DeleteRequest{Auth: r.Auth})
		}); err != nil {
			return failed(errors.Wrapf(err, "delete %s for replacement", addr))
		}
		pctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		err := r.State.DeleteRecord(pctx, r.Project, addr)
		cancel()
		if err != nil && errors.Cause(err) != storage.ErrNotFound {
			return failed(errors.Wrap(err, "remove replaced record"))
		}
		r.dropRecord(addr)
		atomic.AddUint32(&r.deleted, 1)
		exists = false
	}

	var op func() error
	action := "update"
	if exists {
		logger.Info("Updating resource")
		req := &resource.UpdateRequest{Auth: r.Auth, Previous: prev}
		op = func() error { return def.Update(ctx, req) }
	} else {
		action = "create"
		logger.Info("Creating resource")
		req := &resource.CreateRequest{Auth: r.Auth}
		op = func() error { return def.Create(ctx, req) }
	}

	if err := r.exec(ctx, logger, op); err != nil {
		logger.Error("Failed", zap.Error(err))
		return failed(errors.Wrapf(err, "%s %s", action, addr))
	}

	data, err := resource.MarshalDefinition(def)
	if err != nil {
		return failed(errors.Wrap(err, "marshal definition"))
	}
	newRec := storage.Record{
		Address: addr,
		Type:    n.Addr.Type,
		Hash:    hash,
		Def:     data,
		Deps:    n.Deps,
	}

	// Use new context so a cancelled context still stores the result.
	pctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	logger.Debug("Storing record")
	if err := r.State.PutRecord(pctx, r.Project, newRec); err != nil {
		return failed(errors.Wrap(err, "store record"))
	}
	r.setRecord(newRec)

	if action == "create" {
		atomic.AddUint32(&r.created, 1)
	} else {
		atomic.AddUint32(&r.updated, 1)
	}
	return nodeResult{status: StatusDone, def: def}
}

// evalContext builds the evaluation context for decoding an instance's
// configuration. Parent outputs must be realized before this is called.
func (r *run) evalContext(n *graph.Node) (*hcl.EvalContext, error) {
	vals := make(map[string]cty.Value, len(n.Deps))
	for _, dep := range n.Deps {
		res := r.result(dep)
		v, err := resource.CtyValue(res.def)
		if err != nil {
			return nil, errors.Wrapf(err, "realize value of %s", dep)
		}
		vals[dep] = v
	}
	vars, err := resourceVariables(vals)
	if err != nil {
		return nil, err
	}
	if n.Addr.Index >= 0 {
		vars["count"] = cty.ObjectVal(map[string]cty.Value{
			"index": cty.NumberIntVal(int64(n.Addr.Index)),
		})
	}
	if r.Base == nil {
		return &hcl.EvalContext{Variables: vars}, nil
	}
	child := r.Base.NewChild()
	child.Variables = vars
	return child, nil
}

// exec runs a provider operation, retrying transient errors.
func (r *run) exec(ctx context.Context, logger *zap.Logger, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	algo := backoff.WithContext(r.Backoff(), ctx)
	notify := func(err error, dur time.Duration) {
		logger.Info("Retrying", zap.Error(err), zap.Duration("wait", dur))
	}
	return backoff.RetryNotify(wrapped, algo, notify)
}

func isTransient(err error) bool {
	for err != nil {
		if _, ok := err.(resource.ProviderTransientError); ok {
			return true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}

// forceNewChanged reports whether an input that cannot be updated in place
// differs between the declared and stored definition. Secret inputs are
// masked in storage and cannot be compared; a change to one updates in place.
func forceNewChanged(next, prev resource.Definition) bool {
	nv := reflect.Indirect(reflect.ValueOf(next))
	pv := reflect.Indirect(reflect.ValueOf(prev))
	inputs := resource.Fields(nv.Type()).Inputs()
	for _, name := range inputs.Names() {
		f := inputs[name]
		if !f.ForceNew() || f.Secret() {
			continue
		}
		if !reflect.DeepEqual(nv.Field(f.Index).Interface(), pv.Field(f.Index).Interface()) {
			return true
		}
	}
	return false
}

// prune deletes instances that have a state record but are no longer
// declared. Children are deleted before parents by walking the recorded
// order in reverse. An instance still referenced by a remaining record is
// blocked.
func (r *run) prune(ctx context.Context, priorOrder []string) []NodeResult {
	var strays []string
	inOrder := make(map[string]bool, len(priorOrder))
	for _, addr := range priorOrder {
		inOrder[addr] = true
	}
	r.mu.Lock()
	for addr := range r.records {
		if r.Graph.Get(addr) == nil && !inOrder[addr] {
			strays = append(strays, addr)
		}
	}
	r.mu.Unlock()
	sort.Strings(strays)

	var out []NodeResult
	walk := append(strays, plan.Reverse(priorOrder)...)
	for _, addr := range walk {
		if r.Graph.Get(addr) != nil {
			continue
		}
		rec, ok := r.getRecord(addr)
		if !ok {
			continue
		}
		res := r.destroyRecord(ctx, rec)
		out = append(out, NodeResult{Address: addr, Status: res.status, Err: res.err})
	}
	return out
}

// destroyRecord deletes a single stored instance and removes its record.
func (r *run) destroyRecord(ctx context.Context, rec storage.Record) nodeResult {
	logger := r.Logger.With(zap.String("resource", rec.Address))

	if deps := r.dependentRecords(rec.Address); len(deps) > 0 {
		logger.Info("Blocked", zap.Strings("on", deps))
		return nodeResult{
			status: StatusBlocked,
			err:    errors.Errorf("still referenced by %s", strings.Join(deps, ", ")),
		}
	}

	def := r.Registry.New(rec.Type)
	if def == nil {
		return failed(errors.Errorf("stored type not registered: %q", rec.Type))
	}
	if err := resource.UnmarshalDefinition(def, rec.Def); err != nil {
		return failed(errors.Wrap(err, "decode stored state"))
	}

	logger.Info("Deleting resource")
	req := &resource.DeleteRequest{Auth: r.Auth}
	if err := r.exec(ctx, logger, func() error {
		return def.Delete(ctx, req)
	}); err != nil {
		logger.Error("Failed", zap.Error(err))
		return failed(errors.Wrapf(err, "delete %s", rec.Address))
	}

	// Use new context so a cancelled context still stores the result.
	pctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.State.DeleteRecord(pctx, r.Project, rec.Address); err != nil && errors.Cause(err) != storage.ErrNotFound {
		return failed(errors.Wrap(err, "remove record"))
	}
	r.dropRecord(rec.Address)
	atomic.AddUint32(&r.deleted, 1)
	return nodeResult{status: StatusDestroyed}
}

// dependentRecords returns the addresses of stored instances that reference
// addr, sorted.
func (r *run) dependentRecords(addr string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		if rec.Address == addr {
			continue
		}
		for _, dep := range rec.Deps {
			if dep == addr {
				out = append(out, rec.Address)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
