package fleet

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus/testutil"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/metrics"
)

// fakeDriver is a plain driver (AWS/Eucalyptus shaped).
type fakeDriver struct {
	provider *model.Provider
	identity *model.Identity

	instances []*model.Instance
	volumes   []*model.Volume
	sizes     []*model.Size

	stopFunc    func(ctx context.Context, inst *model.Instance) error
	destroyFunc func(ctx context.Context, inst *model.Instance) error
	stopped     []string
	destroyed   []string
}

func (d *fakeDriver) Kind() model.ProviderKind  { return d.provider.Kind }
func (d *fakeDriver) Provider() *model.Provider { return d.provider }
func (d *fakeDriver) Identity() *model.Identity { return d.identity }
func (d *fakeDriver) ListInstances(context.Context) ([]*model.Instance, error) {
	out := make([]*model.Instance, len(d.instances))
	copy(out, d.instances)
	return out, nil
}
func (d *fakeDriver) ListVolumes(context.Context) ([]*model.Volume, error) { return d.volumes, nil }
func (d *fakeDriver) ListSizes(context.Context) ([]*model.Size, error)     { return d.sizes, nil }
func (d *fakeDriver) StopInstance(ctx context.Context, inst *model.Instance) error {
	if d.stopFunc != nil {
		if err := d.stopFunc(ctx, inst); err != nil {
			return err
		}
	}
	d.stopped = append(d.stopped, inst.ID)
	return nil
}
func (d *fakeDriver) DestroyInstance(ctx context.Context, inst *model.Instance) error {
	if d.destroyFunc != nil {
		if err := d.destroyFunc(ctx, inst); err != nil {
			return err
		}
	}
	d.destroyed = append(d.destroyed, inst.ID)
	return nil
}

// fakeAdmin adds every optional capability (OpenStack shaped).
type fakeAdmin struct {
	*fakeDriver

	filters     []map[string]string
	stats       *model.HypervisorStats
	metadata    map[string]string
	setCalls    int
	deleteCalls []string
	groups      []string
	groupsErr   error
	deletedNets [][2]string
}

func (a *fakeAdmin) ListAllInstances(ctx context.Context, opts ...model.InstanceListOption) ([]*model.Instance, error) {
	var o model.InstanceListOptions
	for _, opt := range opts {
		opt(&o)
	}
	a.filters = append(a.filters, o.Filter)
	return a.ListInstances(ctx)
}
func (a *fakeAdmin) ListAllVolumes(ctx context.Context) ([]*model.Volume, error) {
	return append([]*model.Volume{{ID: "all-tenants"}}, a.volumes...), nil
}
func (a *fakeAdmin) HypervisorStatistics(context.Context) (*model.HypervisorStats, error) {
	return a.stats, nil
}
func (a *fakeAdmin) ImageMetadata(context.Context, *model.Machine) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range a.metadata {
		out[k] = v
	}
	return out, nil
}
func (a *fakeAdmin) SetImageMetadata(_ context.Context, _ *model.Machine, md map[string]string) error {
	a.setCalls++
	a.metadata = md
	return nil
}
func (a *fakeAdmin) DeleteImageMetadata(_ context.Context, _ *model.Machine, key string) error {
	a.deleteCalls = append(a.deleteCalls, key)
	delete(a.metadata, key)
	return nil
}
func (a *fakeAdmin) ListUserGroupNames(context.Context) ([]string, error) {
	return a.groups, a.groupsErr
}
func (a *fakeAdmin) DeleteTenantNetwork(_ context.Context, user, tenant string) error {
	a.deletedNets = append(a.deletedNets, [2]string{user, tenant})
	return nil
}

type codedErr struct{ code string }

func (e *codedErr) Error() string { return "api error " + e.code }

func (a *fakeAdmin) ErrorCode(err error) string {
	var ce *codedErr
	if errors.As(err, &ce) {
		return ce.code
	}
	return ""
}

type fakeOpener struct{ drivers map[string]providerdrv.Driver }

func (o *fakeOpener) Open(_ context.Context, name string) (providerdrv.Driver, error) {
	if d, ok := o.drivers[name]; ok {
		return d, nil
	}
	return nil, model.ErrProviderNotFound
}

// fakeOperationRepo fails like a database driver once ctx is done.
type fakeOperationRepo struct {
	ops       map[string]*model.Operation
	createErr error
}

func (r *fakeOperationRepo) Create(ctx context.Context, op *model.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.createErr != nil {
		return r.createErr
	}
	r.ops[op.ID] = op
	return nil
}
func (r *fakeOperationRepo) Get(_ context.Context, id string) (*model.Operation, error) {
	if op, ok := r.ops[id]; ok {
		return op, nil
	}
	return nil, model.ErrOperationNotFound
}
func (r *fakeOperationRepo) List(context.Context) ([]*model.Operation, error) {
	var out []*model.Operation
	for _, op := range r.ops {
		out = append(out, op)
	}
	return out, nil
}
func (r *fakeOperationRepo) Update(_ context.Context, op *model.Operation) error {
	r.ops[op.ID] = op
	return nil
}

var epoch = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	uc     *UseCase
	opener *fakeOpener
	admins map[string]providerdrv.Driver
	ops    *fakeOperationRepo
	clock  *testclock.Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		opener: &fakeOpener{drivers: map[string]providerdrv.Driver{}},
		admins: map[string]providerdrv.Driver{},
		ops:    &fakeOperationRepo{ops: map[string]*model.Operation{}},
		clock:  testclock.NewClock(epoch),
	}
	factory := providerdrv.AdminDriverFactoryFunc(func(_ context.Context, base providerdrv.Driver, _ *model.AdminSettings, _ map[string]string) (providerdrv.Driver, error) {
		if a, ok := e.admins[base.Provider().Name]; ok {
			return a, nil
		}
		return base, nil
	})
	open := func(context.Context, *model.Provider, *model.Identity) (providerdrv.Driver, error) {
		return nil, errors.New("not used")
	}
	for _, k := range model.ProviderKinds {
		providerdrv.Register(k, providerdrv.Variant{Open: open, Admin: factory})
	}
	e.uc = &UseCase{
		Connector: e.opener,
		Registry:  providerdrv.NewMetaRegistry(&model.AdminSettings{}),
		Repos:     &Repos{Operation: e.ops},
		Clock:     e.clock,
		Metrics:   metrics.NewRecorder(),
	}
	return e
}

func (e *testEnv) addProvider(name string, kind model.ProviderKind, admin providerdrv.Driver) *fakeDriver {
	base := &fakeDriver{
		provider: &model.Provider{Name: name, Kind: kind},
		identity: &model.Identity{Provider: name, Key: "user-" + name},
	}
	e.opener.drivers[name] = base
	if admin != nil {
		e.admins[name] = admin
	}
	return base
}

func newFakeAdmin(name string, kind model.ProviderKind, insts ...*model.Instance) *fakeAdmin {
	return &fakeAdmin{fakeDriver: &fakeDriver{
		provider:  &model.Provider{Name: name, Kind: kind},
		identity:  &model.Identity{Provider: name, Key: "admin"},
		instances: insts,
	}}
}

func fleetInstances() []*model.Instance {
	return []*model.Instance{
		{ID: "s1", Name: "vm1", Status: model.StatusActive, TenantID: "p1"},
		{ID: "s2", Name: "vm2", Status: "shutoff", TenantID: "p2"},
		{ID: "s3", Name: "vm3", Status: model.StatusActive, TenantID: "p2"},
	}
}

func outcomes(op *model.Operation) map[string]model.ItemOutcome {
	out := map[string]model.ItemOutcome{}
	for _, it := range op.Items {
		out[string(it.Kind)+":"+it.ID] = it.Outcome
	}
	return out
}

func TestStopAll_StopsOnlyActive(t *testing.T) {
	e := newTestEnv(t)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack, fleetInstances()...)
	admin.groups = []string{"alice"}
	e.addProvider("os1", model.ProviderKindOpenStack, admin)

	out, err := e.uc.StopAll(context.Background(), &StopAllInput{Provider: "os1"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(admin.stopped, []string{"s1", "s3"}) || len(admin.destroyed) != 0 {
		t.Errorf("stopped=%v destroyed=%v", admin.stopped, admin.destroyed)
	}
	if len(admin.deletedNets) != 0 {
		t.Errorf("stop must not delete networks: %v", admin.deletedNets)
	}
	op := out.Operation
	want := map[string]model.ItemOutcome{
		"instance:s1": model.ItemSucceeded,
		"instance:s2": model.ItemSkipped,
		"instance:s3": model.ItemSucceeded,
	}
	if got := outcomes(op); !reflect.DeepEqual(got, want) {
		t.Errorf("outcomes = %v, want %v", got, want)
	}
	if op.Status != model.OperationStatusSucceeded || op.Action != model.OperationActionStop || !op.CreatedAt.Equal(epoch) {
		t.Errorf("operation = %+v", op)
	}
	if _, ok := e.ops.ops[op.ID]; !ok {
		t.Error("operation not persisted")
	}
	if n, err := testutil.GatherAndCount(e.uc.Metrics.Registry(), "cloudmeta_fleet_items_total"); err != nil || n != 2 {
		t.Errorf("fleet item series = %d, %v; want 2 (succeeded, skipped)", n, err)
	}
}

func TestStopAll_DestroyDeletesTenantNetworks(t *testing.T) {
	e := newTestEnv(t)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack, fleetInstances()...)
	admin.groups = []string{"alice", "bob"}
	e.addProvider("os1", model.ProviderKindOpenStack, admin)

	out, err := e.uc.DestroyAll(context.Background(), &DestroyAllInput{Provider: "os1"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(admin.destroyed, []string{"s1", "s2", "s3"}) || len(admin.stopped) != 0 {
		t.Errorf("destroyed=%v stopped=%v", admin.destroyed, admin.stopped)
	}
	if want := [][2]string{{"alice", "alice"}, {"bob", "bob"}}; !reflect.DeepEqual(admin.deletedNets, want) {
		t.Errorf("deleted networks = %v, want %v", admin.deletedNets, want)
	}
	op := out.Operation
	if op.Action != model.OperationActionDestroy || op.Status != model.OperationStatusSucceeded || len(op.Items) != 5 {
		t.Errorf("operation = %+v", op)
	}
	if it := op.Items[3]; it.Kind != model.ItemKindNetwork || it.ID != "alice" || it.Name != "alice" {
		t.Errorf("network item = %+v", it)
	}
}

func TestStopAll_DestroyWithoutAccountManager(t *testing.T) {
	e := newTestEnv(t)
	base := e.addProvider("aws1", model.ProviderKindAWS, nil)
	base.instances = fleetInstances()

	out, err := e.uc.StopAll(context.Background(), &StopAllInput{Provider: "aws1", Destroy: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(base.destroyed) != 3 {
		t.Errorf("destroyed = %v", base.destroyed)
	}
	for _, it := range out.Operation.Items {
		if it.Kind != model.ItemKindInstance {
			t.Errorf("unexpected item %+v", it)
		}
	}
}

func TestStopAll_ItemFailureDoesNotStopBatch(t *testing.T) {
	e := newTestEnv(t)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack, fleetInstances()...)
	admin.destroyFunc = func(_ context.Context, inst *model.Instance) error {
		if inst.ID == "s2" {
			return fmt.Errorf("deleting server s2: %w", &codedErr{code: "409"})
		}
		return nil
	}
	e.addProvider("os1", model.ProviderKindOpenStack, admin)

	out, err := e.uc.StopAll(context.Background(), &StopAllInput{Provider: "os1", Destroy: true})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(admin.destroyed, []string{"s1", "s3"}) {
		t.Errorf("destroyed = %v", admin.destroyed)
	}
	op := out.Operation
	if op.Status != model.OperationStatusPartial {
		t.Errorf("status = %s, want partial", op.Status)
	}
	failed := op.Failed()
	if len(failed) != 1 || failed[0].ID != "s2" || failed[0].Code != "409" || failed[0].Error == "" {
		t.Errorf("failed = %+v", failed)
	}
}

func TestStopAll_ContextCanceled(t *testing.T) {
	e := newTestEnv(t)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack, fleetInstances()...)
	admin.groups = []string{"alice"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	admin.destroyFunc = func(context.Context, *model.Instance) error {
		cancel()
		return nil
	}
	e.addProvider("os1", model.ProviderKindOpenStack, admin)

	out, err := e.uc.StopAll(ctx, &StopAllInput{Provider: "os1", Destroy: true})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]model.ItemOutcome{
		"instance:s1": model.ItemSucceeded,
		"instance:s2": model.ItemFailed,
		"instance:s3": model.ItemFailed,
		"network:*":   model.ItemFailed,
	}
	if got := outcomes(out.Operation); !reflect.DeepEqual(got, want) {
		t.Errorf("outcomes = %v, want %v", got, want)
	}
	for _, it := range out.Operation.Failed() {
		if it.Error != context.Canceled.Error() {
			t.Errorf("item %s error = %q", it.ID, it.Error)
		}
	}
	if len(admin.destroyed) != 1 || len(admin.deletedNets) != 0 {
		t.Errorf("work after cancel: destroyed=%v nets=%v", admin.destroyed, admin.deletedNets)
	}
	if _, ok := e.ops.ops[out.Operation.ID]; !ok {
		t.Fatal("cancelled operation not persisted")
	}

	admin.destroyFunc = nil
	admin.groups = []string{"alice"}
	retried, err := e.uc.Retry(context.Background(), &RetryInput{OperationID: out.Operation.ID})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(admin.destroyed, []string{"s1", "s2", "s3"}) {
		t.Errorf("destroyed after retry = %v", admin.destroyed)
	}
	if retried.Operation.Status != model.OperationStatusSucceeded || retried.Operation.RetryOf != out.Operation.ID {
		t.Errorf("retry operation = %+v", retried.Operation)
	}
}

func TestStopAll_PersistFailureKeepsOperation(t *testing.T) {
	e := newTestEnv(t)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack, fleetInstances()...)
	e.addProvider("os1", model.ProviderKindOpenStack, admin)
	e.ops.createErr = errors.New("disk full")

	out, err := e.uc.StopAll(context.Background(), &StopAllInput{Provider: "os1", Destroy: true})
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if out == nil || len(out.Operation.Items) != 3 {
		t.Fatalf("output = %+v, want the unpersisted operation", out)
	}
	if !reflect.DeepEqual(admin.destroyed, []string{"s1", "s2", "s3"}) {
		t.Errorf("destroyed = %v", admin.destroyed)
	}
}

func TestRetry(t *testing.T) {
	e := newTestEnv(t)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack, fleetInstances()...)
	admin.groupsErr = errors.New("keystone down")
	failS2 := true
	admin.destroyFunc = func(_ context.Context, inst *model.Instance) error {
		if inst.ID == "s2" && failS2 {
			return errors.New("busy")
		}
		return nil
	}
	e.addProvider("os1", model.ProviderKindOpenStack, admin)
	ctx := context.Background()

	first, err := e.uc.StopAll(ctx, &StopAllInput{Provider: "os1", Destroy: true})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(first.Operation.Failed()); n != 2 {
		t.Fatalf("first run failed items = %d, want 2 (s2 and user groups)", n)
	}

	failS2 = false
	admin.groupsErr = nil
	admin.groups = []string{"alice"}
	admin.destroyed = nil
	e.clock.Advance(time.Minute)

	second, err := e.uc.Retry(ctx, &RetryInput{OperationID: first.Operation.ID})
	if err != nil {
		t.Fatal(err)
	}
	op := second.Operation
	if op.RetryOf != first.Operation.ID || op.ID == first.Operation.ID || op.Action != model.OperationActionDestroy {
		t.Errorf("retry operation = %+v", op)
	}
	if !reflect.DeepEqual(admin.destroyed, []string{"s2"}) {
		t.Errorf("retry destroyed %v, want only s2", admin.destroyed)
	}
	if want := [][2]string{{"alice", "alice"}}; !reflect.DeepEqual(admin.deletedNets, want) {
		t.Errorf("retry networks = %v", admin.deletedNets)
	}
	if op.Status != model.OperationStatusSucceeded || !op.CreatedAt.Equal(epoch.Add(time.Minute)) {
		t.Errorf("retry status=%s created=%v", op.Status, op.CreatedAt)
	}

	if _, err := e.uc.Retry(ctx, &RetryInput{OperationID: op.ID}); !errors.Is(err, model.ErrOperationInvalid) {
		t.Errorf("retry of clean operation err = %v", err)
	}
	if _, err := e.uc.Retry(ctx, &RetryInput{OperationID: "op-missing"}); !errors.Is(err, model.ErrOperationNotFound) {
		t.Errorf("retry of missing operation err = %v", err)
	}

	list, err := e.uc.Operations(ctx, &OperationsInput{Provider: "os1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Operations) != 2 || list.Operations[0].ID != op.ID {
		t.Errorf("operations not newest first: %+v", list.Operations)
	}
	got, err := e.uc.Operation(ctx, &OperationInput{ID: first.Operation.ID})
	if err != nil || got.Operation != first.Operation {
		t.Errorf("Operation() = %+v, %v", got, err)
	}
}

func TestAllInstances(t *testing.T) {
	e := newTestEnv(t)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack, fleetInstances()...)
	e.addProvider("os1", model.ProviderKindOpenStack, admin)
	aws := e.addProvider("aws1", model.ProviderKindAWS, nil)
	aws.instances = fleetInstances()
	ctx := context.Background()

	out, err := e.uc.AllInstances(ctx, &AllInstancesInput{Provider: "os1", Filter: map[string]string{"project_id": "p2"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Instances) != 3 || !reflect.DeepEqual(admin.filters, []map[string]string{{"project_id": "p2"}}) {
		t.Errorf("filter not forwarded: %v", admin.filters)
	}

	out, err = e.uc.AllInstances(ctx, &AllInstancesInput{Provider: "aws1", Filter: map[string]string{"project_id": "p2"}})
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, i := range out.Instances {
		ids = append(ids, i.ID)
	}
	if !reflect.DeepEqual(ids, []string{"s2", "s3"}) {
		t.Errorf("local filter ids = %v", ids)
	}
	if len(aws.instances) != 3 {
		t.Error("local filtering mutated driver data")
	}

	if _, err := e.uc.AllInstances(ctx, &AllInstancesInput{Provider: "aws1", Filter: map[string]string{"color": "x"}}); err == nil {
		t.Error("expected error for unknown filter")
	}
	if _, err := e.uc.AllInstances(ctx, &AllInstancesInput{Provider: "nope"}); !errors.Is(err, model.ErrProviderNotFound) {
		t.Errorf("unknown provider err = %v", err)
	}

	vols, err := e.uc.AllVolumes(ctx, &AllVolumesInput{Provider: "os1"})
	if err != nil || len(vols.Volumes) != 1 || vols.Volumes[0].ID != "all-tenants" {
		t.Errorf("AllVolumes() = %+v, %v", vols, err)
	}
}

func TestOccupancy(t *testing.T) {
	e := newTestEnv(t)
	four := int64(4)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack)
	admin.stats = &model.HypervisorStats{VCPUs: 32, VCPUsUsed: 16, MemoryMB: 65536, LocalGB: 1000}
	admin.sizes = []*model.Size{{ID: "f1", Name: "m1.large", VCPUs: &four, RAMMB: 4096, DiskGB: 40}}
	e.addProvider("os1", model.ProviderKindOpenStack, admin)
	euca := e.addProvider("euca1", model.ProviderKindEucalyptus, nil)
	euca.sizes = []*model.Size{{ID: "m1.small", Name: "m1.small"}}
	e.addProvider("aws1", model.ProviderKindAWS, nil)
	ctx := context.Background()

	out, err := e.uc.Occupancy(ctx, &OccupancyInput{Provider: "os1"})
	if err != nil {
		t.Fatal(err)
	}
	occ := out.Sizes[0].Occupancy
	if occ == nil || occ.Total != model.Bounded(8) || occ.Remaining != model.Bounded(4) {
		t.Errorf("occupancy = %+v", occ)
	}
	if n, _ := testutil.GatherAndCount(e.uc.Metrics.Registry(), "cloudmeta_occupancy_remaining"); n != 1 {
		t.Errorf("occupancy gauge series = %d", n)
	}

	out, err = e.uc.Occupancy(ctx, &OccupancyInput{Provider: "euca1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sizes) != 1 || out.Sizes[0].Occupancy != nil {
		t.Errorf("eucalyptus sizes should be returned unchanged: %+v", out.Sizes)
	}

	if _, err := e.uc.Occupancy(ctx, &OccupancyInput{Provider: "aws1"}); !errors.Is(err, model.ErrCapabilityUnsupported) {
		t.Errorf("aws occupancy err = %v", err)
	}
}

func TestMetadataDeployed(t *testing.T) {
	e := newTestEnv(t)
	admin := newFakeAdmin("os1", model.ProviderKindOpenStack)
	admin.metadata = map[string]string{"os_distro": "ubuntu"}
	e.addProvider("os1", model.ProviderKindOpenStack, admin)
	e.addProvider("aws1", model.ProviderKindAWS, nil)
	ctx := context.Background()
	in := &MetadataDeployedInput{Provider: "os1", MachineID: "img1"}

	if _, err := e.uc.RemoveMetadataDeployed(ctx, in); err != nil {
		t.Fatal(err)
	}
	if len(admin.deleteCalls) != 0 {
		t.Errorf("remove without key issued deletes: %v", admin.deleteCalls)
	}

	out, err := e.uc.AddMetadataDeployed(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"os_distro": "ubuntu", "deployed": "True"}
	if !out.Changed || !reflect.DeepEqual(admin.metadata, want) {
		t.Errorf("after add: changed=%v metadata=%v", out.Changed, admin.metadata)
	}

	out, err = e.uc.RemoveMetadataDeployed(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Changed || !reflect.DeepEqual(admin.deleteCalls, []string{"deployed"}) {
		t.Errorf("after remove: changed=%v deletes=%v", out.Changed, admin.deleteCalls)
	}

	if _, err := e.uc.AddMetadataDeployed(ctx, &MetadataDeployedInput{Provider: "aws1", MachineID: "ami-1"}); !errors.Is(err, model.ErrCapabilityUnsupported) {
		t.Errorf("aws metadata err = %v", err)
	}
	if _, err := e.uc.AddMetadataDeployed(ctx, &MetadataDeployedInput{Provider: "os1"}); !errors.Is(err, model.ErrProviderInvalid) {
		t.Errorf("missing machine err = %v", err)
	}
}

func TestMetas(t *testing.T) {
	e := newTestEnv(t)
	e.addProvider("os1", model.ProviderKindOpenStack, newFakeAdmin("os1", model.ProviderKindOpenStack))
	e.addProvider("aws1", model.ProviderKindAWS, nil)
	ctx := context.Background()
	for _, p := range []string{"os1", "aws1", "os1"} {
		if _, err := e.uc.AllVolumes(ctx, &AllVolumesInput{Provider: p}); err != nil {
			t.Fatal(err)
		}
	}
	out, err := e.uc.Metas(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, m := range out.Metas {
		got = append(got, m.Provider+"/"+m.Identity+"/"+string(m.Driver))
	}
	sort.Strings(got)
	if want := []string{"aws1/user-aws1/aws", "os1/user-os1/openstack"}; !reflect.DeepEqual(got, want) {
		t.Errorf("metas = %v, want %v", got, want)
	}
}

func TestMetas_RegistersNamedProviders(t *testing.T) {
	e := newTestEnv(t)
	e.addProvider("os1", model.ProviderKindOpenStack, newFakeAdmin("os1", model.ProviderKindOpenStack))
	ctx := context.Background()

	out, err := e.uc.Metas(ctx, &MetasInput{Providers: []string{"os1"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Metas) != 1 || out.Metas[0].Provider != "os1" {
		t.Errorf("metas = %+v", out.Metas)
	}
	if _, err := e.uc.Metas(ctx, &MetasInput{Providers: []string{"missing"}}); !errors.Is(err, model.ErrProviderNotFound) {
		t.Errorf("missing provider err = %v", err)
	}
}
