package ec2

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2sdk "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

type driver struct {
	provider *model.Provider
	identity *model.Identity
	client   ec2API
}

var (
	_ providerdrv.Driver     = (*driver)(nil)
	_ providerdrv.ErrorCoder = (*driver)(nil)
)

func (d *driver) Kind() model.ProviderKind  { return d.provider.Kind }
func (d *driver) Provider() *model.Provider { return d.provider }
func (d *driver) Identity() *model.Identity { return d.identity }

func (d *driver) withMethodLogger(ctx context.Context, method string) (context.Context, func(err error)) {
	ctx = logging.With(ctx, "provider", d.provider.Name)
	return logging.Span(ctx, string(d.provider.Kind), method)
}

func (d *driver) ListInstances(ctx context.Context) (out []*model.Instance, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListInstances")
	defer func() { cleanup(err) }()

	p := ec2sdk.NewDescribeInstancesPaginator(d.client, &ec2sdk.DescribeInstancesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing instances: %w", err)
		}
		for _, r := range page.Reservations {
			for _, inst := range r.Instances {
				out = append(out, toInstance(inst, aws.ToString(r.OwnerId)))
			}
		}
	}
	return out, nil
}

func (d *driver) ListVolumes(ctx context.Context) (out []*model.Volume, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListVolumes")
	defer func() { cleanup(err) }()

	p := ec2sdk.NewDescribeVolumesPaginator(d.client, &ec2sdk.DescribeVolumesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing volumes: %w", err)
		}
		for _, v := range page.Volumes {
			if v.VolumeId == nil {
				continue
			}
			out = append(out, &model.Volume{
				ID:     aws.ToString(v.VolumeId),
				Name:   tagValue(v.Tags, "Name"),
				Status: string(v.State),
				SizeGB: int64(aws.ToInt32(v.Size)),
				Zone:   aws.ToString(v.AvailabilityZone),
			})
		}
	}
	return out, nil
}

func (d *driver) ListSizes(ctx context.Context) (out []*model.Size, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ListSizes")
	defer func() { cleanup(err) }()

	p := ec2sdk.NewDescribeInstanceTypesPaginator(d.client, &ec2sdk.DescribeInstanceTypesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing instance types: %w", err)
		}
		for _, it := range page.InstanceTypes {
			out = append(out, toSize(it))
		}
	}
	return out, nil
}

func (d *driver) StopInstance(ctx context.Context, inst *model.Instance) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "StopInstance")
	defer func() { cleanup(err) }()

	if _, err := d.client.StopInstances(ctx, &ec2sdk.StopInstancesInput{InstanceIds: []string{inst.ID}}); err != nil {
		return fmt.Errorf("stopping instance %s: %w", inst.ID, err)
	}
	return nil
}

func (d *driver) DestroyInstance(ctx context.Context, inst *model.Instance) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "DestroyInstance")
	defer func() { cleanup(err) }()

	if _, err := d.client.TerminateInstances(ctx, &ec2sdk.TerminateInstancesInput{InstanceIds: []string{inst.ID}}); err != nil {
		return fmt.Errorf("terminating instance %s: %w", inst.ID, err)
	}
	return nil
}

// ErrorCode returns the EC2 API error code, e.g. "InvalidInstanceID.NotFound".
func (d *driver) ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func toInstance(inst ec2types.Instance, owner string) *model.Instance {
	return &model.Instance{
		ID:       aws.ToString(inst.InstanceId),
		Name:     tagValue(inst.Tags, "Name"),
		Status:   normalizeState(inst.State),
		TenantID: owner,
		SizeID:   string(inst.InstanceType),
		ImageID:  aws.ToString(inst.ImageId),
	}
}

func normalizeState(s *ec2types.InstanceState) string {
	if s == nil {
		return "unknown"
	}
	if s.Name == ec2types.InstanceStateNameRunning {
		return model.StatusActive
	}
	return strings.ToLower(string(s.Name))
}

func toSize(it ec2types.InstanceTypeInfo) *model.Size {
	s := &model.Size{ID: string(it.InstanceType), Name: string(it.InstanceType)}
	if it.VCpuInfo != nil && it.VCpuInfo.DefaultVCpus != nil {
		v := int64(*it.VCpuInfo.DefaultVCpus)
		s.VCPUs = &v
	}
	if it.MemoryInfo != nil {
		s.RAMMB = aws.ToInt64(it.MemoryInfo.SizeInMiB)
	}
	if it.InstanceStorageInfo != nil {
		s.DiskGB = aws.ToInt64(it.InstanceStorageInfo.TotalSizeInGB)
	}
	return s
}

func tagValue(tags []ec2types.Tag, key string) string {
	for _, t := range tags {
		if aws.ToString(t.Key) == key {
			return aws.ToString(t.Value)
		}
	}
	return ""
}
