package ec2

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2sdk "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
)

type fakeEC2 struct {
	instancePages []*ec2sdk.DescribeInstancesOutput
	volumes       []ec2types.Volume
	types         []ec2types.InstanceTypeInfo
	stopErr       error
	stopped       []string
	terminated    []string
}

func pageIndex(token *string) int {
	if token == nil {
		return 0
	}
	n, _ := strconv.Atoi(*token)
	return n
}

func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2sdk.DescribeInstancesInput, _ ...func(*ec2sdk.Options)) (*ec2sdk.DescribeInstancesOutput, error) {
	i := pageIndex(in.NextToken)
	out := *f.instancePages[i]
	if i+1 < len(f.instancePages) {
		out.NextToken = aws.String(strconv.Itoa(i + 1))
	}
	return &out, nil
}

func (f *fakeEC2) DescribeVolumes(context.Context, *ec2sdk.DescribeVolumesInput, ...func(*ec2sdk.Options)) (*ec2sdk.DescribeVolumesOutput, error) {
	return &ec2sdk.DescribeVolumesOutput{Volumes: f.volumes}, nil
}

func (f *fakeEC2) DescribeInstanceTypes(context.Context, *ec2sdk.DescribeInstanceTypesInput, ...func(*ec2sdk.Options)) (*ec2sdk.DescribeInstanceTypesOutput, error) {
	return &ec2sdk.DescribeInstanceTypesOutput{InstanceTypes: f.types}, nil
}

func (f *fakeEC2) StopInstances(_ context.Context, in *ec2sdk.StopInstancesInput, _ ...func(*ec2sdk.Options)) (*ec2sdk.StopInstancesOutput, error) {
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	f.stopped = append(f.stopped, in.InstanceIds...)
	return &ec2sdk.StopInstancesOutput{}, nil
}

func (f *fakeEC2) TerminateInstances(_ context.Context, in *ec2sdk.TerminateInstancesInput, _ ...func(*ec2sdk.Options)) (*ec2sdk.TerminateInstancesOutput, error) {
	f.terminated = append(f.terminated, in.InstanceIds...)
	return &ec2sdk.TerminateInstancesOutput{}, nil
}

func ec2Instance(id string, state ec2types.InstanceStateName) ec2types.Instance {
	return ec2types.Instance{
		InstanceId:   aws.String(id),
		ImageId:      aws.String("ami-1"),
		InstanceType: ec2types.InstanceTypeT3Micro,
		State:        &ec2types.InstanceState{Name: state},
		Tags:         []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String("vm-" + id)}},
	}
}

// useFakeClient swaps the client constructor and records the identities used.
func useFakeClient(t *testing.T, f *fakeEC2) *[]*model.Identity {
	t.Helper()
	var opened []*model.Identity
	orig := newClientFunc
	newClientFunc = func(_ context.Context, _ *model.Provider, id *model.Identity) (ec2API, error) {
		opened = append(opened, id)
		return f, nil
	}
	t.Cleanup(func() { newClientFunc = orig })
	return &opened
}

func testProvider(kind model.ProviderKind) *model.Provider {
	p := &model.Provider{Name: "p1", Kind: kind, Options: map[string]string{}}
	if kind == model.ProviderKindEucalyptus {
		p.Options[OptionEndpoint] = "http://euca.example:8773/services/compute"
	}
	return p
}

func TestDriver_ListInstancesPaginatesAndNormalizes(t *testing.T) {
	f := &fakeEC2{instancePages: []*ec2sdk.DescribeInstancesOutput{
		{Reservations: []ec2types.Reservation{{OwnerId: aws.String("111"), Instances: []ec2types.Instance{
			ec2Instance("i-1", ec2types.InstanceStateNameRunning),
			ec2Instance("i-2", ec2types.InstanceStateNameStopped),
		}}}},
		{Reservations: []ec2types.Reservation{{OwnerId: aws.String("222"), Instances: []ec2types.Instance{
			ec2Instance("i-3", ec2types.InstanceStateNamePending),
		}}}},
	}}
	useFakeClient(t, f)
	d, err := open(context.Background(), testProvider(model.ProviderKindAWS), &model.Identity{Key: "k"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := d.ListInstances(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []struct{ id, status, owner string }{
		{"i-1", "active", "111"},
		{"i-2", "stopped", "111"},
		{"i-3", "pending", "222"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d instances, want %d", len(got), len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.ID != w.id || g.Status != w.status || g.TenantID != w.owner {
			t.Errorf("instance[%d] = %+v, want %+v", i, g, w)
		}
		if g.Name != "vm-"+w.id || g.SizeID != "t3.micro" || g.ImageID != "ami-1" {
			t.Errorf("instance[%d] fields = %+v", i, g)
		}
	}
}

func TestDriver_SizesAndVolumes(t *testing.T) {
	f := &fakeEC2{
		types: []ec2types.InstanceTypeInfo{{
			InstanceType:        ec2types.InstanceTypeM5Large,
			VCpuInfo:            &ec2types.VCpuInfo{DefaultVCpus: aws.Int32(2)},
			MemoryInfo:          &ec2types.MemoryInfo{SizeInMiB: aws.Int64(8192)},
			InstanceStorageInfo: &ec2types.InstanceStorageInfo{TotalSizeInGB: aws.Int64(75)},
		}, {
			InstanceType: ec2types.InstanceTypeT3Micro,
		}},
		volumes: []ec2types.Volume{
			{VolumeId: aws.String("vol-1"), Size: aws.Int32(10), State: ec2types.VolumeStateInUse, AvailabilityZone: aws.String("us-east-1a")},
			{Size: aws.Int32(1)},
		},
	}
	useFakeClient(t, f)
	d, _ := open(context.Background(), testProvider(model.ProviderKindAWS), &model.Identity{})

	sizes, err := d.ListSizes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sizes) != 2 {
		t.Fatalf("got %d sizes", len(sizes))
	}
	if s := sizes[0]; s.ID != "m5.large" || s.VCPUs == nil || *s.VCPUs != 2 || s.CPU != nil || s.RAMMB != 8192 || s.DiskGB != 75 {
		t.Errorf("m5.large = %+v", s)
	}
	if s := sizes[1]; s.VCPUs != nil || s.RAMMB != 0 {
		t.Errorf("t3.micro without info = %+v", s)
	}

	vols, err := d.ListVolumes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(vols) != 1 || vols[0].ID != "vol-1" || vols[0].SizeGB != 10 || vols[0].Status != "in-use" || vols[0].Zone != "us-east-1a" {
		t.Errorf("volumes = %+v", vols)
	}
}

func TestDriver_StopDestroyAndErrorCode(t *testing.T) {
	f := &fakeEC2{}
	useFakeClient(t, f)
	d, _ := open(context.Background(), testProvider(model.ProviderKindAWS), &model.Identity{})
	ctx := context.Background()

	if err := d.StopInstance(ctx, &model.Instance{ID: "i-1"}); err != nil {
		t.Fatal(err)
	}
	if err := d.DestroyInstance(ctx, &model.Instance{ID: "i-2"}); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(f.stopped) != "[i-1]" || fmt.Sprint(f.terminated) != "[i-2]" {
		t.Errorf("stopped=%v terminated=%v", f.stopped, f.terminated)
	}

	f.stopErr = &smithy.GenericAPIError{Code: "IncorrectInstanceState", Message: "not running"}
	err := d.StopInstance(ctx, &model.Instance{ID: "i-3"})
	if err == nil {
		t.Fatal("expected error")
	}
	coder := d.(providerdrv.ErrorCoder)
	if got := coder.ErrorCode(err); got != "IncorrectInstanceState" {
		t.Errorf("ErrorCode() = %q", got)
	}
	if got := coder.ErrorCode(errors.New("plain")); got != "" {
		t.Errorf("ErrorCode(plain) = %q, want empty", got)
	}
}

func TestAdminDrivers(t *testing.T) {
	ctx := context.Background()

	t.Run("aws without admin key returns base", func(t *testing.T) {
		opened := useFakeClient(t, &fakeEC2{})
		base, _ := open(ctx, testProvider(model.ProviderKindAWS), &model.Identity{Key: "user"})
		admin, err := createAWSAdminDriver(ctx, base, &model.AdminSettings{}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if admin != base || len(*opened) != 1 {
			t.Errorf("expected base driver back, opened=%d", len(*opened))
		}
	})

	t.Run("aws with admin key opens new driver", func(t *testing.T) {
		opened := useFakeClient(t, &fakeEC2{})
		base, _ := open(ctx, testProvider(model.ProviderKindAWS), &model.Identity{Key: "user"})
		settings := &model.AdminSettings{AWS: model.AdminCredentials{Key: "AKIAADMIN", Secret: "s"}}
		admin, err := createAWSAdminDriver(ctx, base, settings, map[string]string{"key": "ignored"})
		if err != nil {
			t.Fatal(err)
		}
		if admin == base || admin.Identity().Key != "AKIAADMIN" || admin.Identity().Provider != "p1" {
			t.Errorf("admin identity = %+v", admin.Identity())
		}
		if len(*opened) != 2 {
			t.Errorf("opened = %d, want 2", len(*opened))
		}
	})

	t.Run("eucalyptus resolves creds without tenant", func(t *testing.T) {
		useFakeClient(t, &fakeEC2{})
		base, _ := open(ctx, testProvider(model.ProviderKindEucalyptus), &model.Identity{Key: "user"})
		settings := &model.AdminSettings{Eucalyptus: model.AdminCredentials{Key: "eadmin", Secret: "es", Tenant: "x"}}
		admin, err := createEucalyptusAdminDriver(ctx, base, settings, map[string]string{"secret": "override", "ex_tenant_name": "t"})
		if err != nil {
			t.Fatal(err)
		}
		id := admin.Identity()
		if id.Key != "eadmin" || id.Secret != "override" || id.Tenant != "" {
			t.Errorf("identity = %+v", id)
		}
	})

	t.Run("eucalyptus requires endpoint", func(t *testing.T) {
		useFakeClient(t, &fakeEC2{})
		p := &model.Provider{Name: "e", Kind: model.ProviderKindEucalyptus}
		if _, err := open(ctx, p, &model.Identity{}); !errors.Is(err, model.ErrProviderInvalid) {
			t.Errorf("err = %v, want ErrProviderInvalid", err)
		}
	})
}

func TestRegistered(t *testing.T) {
	for _, k := range []model.ProviderKind{model.ProviderKindAWS, model.ProviderKindEucalyptus} {
		if _, err := providerdrv.Lookup(k); err != nil {
			t.Errorf("kind %s not registered: %v", k, err)
		}
	}
}
