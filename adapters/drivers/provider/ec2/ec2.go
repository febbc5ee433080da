// Package ec2 implements the AWS and Eucalyptus provider drivers on top of the
// EC2 API. Both kinds share one driver; they differ only in endpoint and in how
// the admin driver is derived.
package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	ec2sdk "github.com/aws/aws-sdk-go-v2/service/ec2"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
)

// Provider option keys.
const (
	OptionRegion   = "region_name"
	OptionEndpoint = "endpoint"
)

const defaultRegion = "us-east-1"

// ec2API is the subset of the EC2 client used by the driver.
type ec2API interface {
	ec2sdk.DescribeInstancesAPIClient
	ec2sdk.DescribeVolumesAPIClient
	ec2sdk.DescribeInstanceTypesAPIClient
	StopInstances(ctx context.Context, in *ec2sdk.StopInstancesInput, optFns ...func(*ec2sdk.Options)) (*ec2sdk.StopInstancesOutput, error)
	TerminateInstances(ctx context.Context, in *ec2sdk.TerminateInstancesInput, optFns ...func(*ec2sdk.Options)) (*ec2sdk.TerminateInstancesOutput, error)
}

// newClientFunc builds the EC2 client; tests replace it.
var newClientFunc = newClient

func newClient(ctx context.Context, p *model.Provider, id *model.Identity) (ec2API, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(p.Option(OptionRegion, defaultRegion)),
	}
	if id.Key != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id.Key, id.Secret, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	endpoint := p.Option(OptionEndpoint, "")
	return ec2sdk.NewFromConfig(cfg, func(o *ec2sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// open is the OpenFunc shared by both kinds.
func open(ctx context.Context, p *model.Provider, id *model.Identity) (providerdrv.Driver, error) {
	if p.Kind == model.ProviderKindEucalyptus && p.Option(OptionEndpoint, "") == "" {
		return nil, fmt.Errorf("%w: eucalyptus provider %q requires the %s option", model.ErrProviderInvalid, p.Name, OptionEndpoint)
	}
	client, err := newClientFunc(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return &driver{provider: p, identity: id, client: client}, nil
}

func init() {
	providerdrv.Register(model.ProviderKindAWS, providerdrv.Variant{
		Open:  open,
		Admin: providerdrv.AdminDriverFactoryFunc(createAWSAdminDriver),
	})
	providerdrv.Register(model.ProviderKindEucalyptus, providerdrv.Variant{
		Open:  open,
		Admin: providerdrv.AdminDriverFactoryFunc(createEucalyptusAdminDriver),
	})
}
