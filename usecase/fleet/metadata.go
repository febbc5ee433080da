package fleet

import (
	"context"
	"fmt"

	providerdrv "github.com/kompox/cloudmeta/adapters/drivers/provider"
	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

// DeployedKey marks an image as deployed when set to DeployedValue.
const (
	DeployedKey   = "deployed"
	DeployedValue = "True"
)

// MetadataDeployedInput identifies the image.
type MetadataDeployedInput struct {
	Provider  string `json:"provider"`
	MachineID string `json:"machine_id"`
}

// MetadataDeployedOutput is the image metadata after the change.
type MetadataDeployedOutput struct {
	Machine  *model.Machine    `json:"machine"`
	Metadata map[string]string `json:"metadata"`
	Changed  bool              `json:"changed"`
}

func (u *UseCase) imageManager(ctx context.Context, in *MetadataDeployedInput) (providerdrv.ImageMetadataManager, *model.Machine, error) {
	if in == nil || in.MachineID == "" {
		return nil, nil, fmt.Errorf("%w: machine id required", model.ErrProviderInvalid)
	}
	_, admin, err := u.adminDriver(ctx, in.Provider)
	if err != nil {
		return nil, nil, err
	}
	im, ok := admin.(providerdrv.ImageMetadataManager)
	if !ok {
		return nil, nil, fmt.Errorf("%w: image metadata on %s", model.ErrCapabilityUnsupported, admin.Kind())
	}
	return im, &model.Machine{ID: in.MachineID}, nil
}

// AddMetadataDeployed sets deployed=True on the image metadata.
func (u *UseCase) AddMetadataDeployed(ctx context.Context, in *MetadataDeployedInput) (out *MetadataDeployedOutput, err error) {
	ctx, cleanup := logging.Span(ctx, "fleet", "AddMetadataDeployed")
	defer func() { cleanup(err) }()

	im, m, err := u.imageManager(ctx, in)
	if err != nil {
		return nil, err
	}
	md, err := im.ImageMetadata(ctx, m)
	if err != nil {
		return nil, err
	}
	if md == nil {
		md = map[string]string{}
	}
	changed := md[DeployedKey] != DeployedValue
	md[DeployedKey] = DeployedValue
	if err := im.SetImageMetadata(ctx, m, md); err != nil {
		return nil, err
	}
	return &MetadataDeployedOutput{Machine: m, Metadata: md, Changed: changed}, nil
}

// RemoveMetadataDeployed deletes the deployed key when it is present and
// non-empty. Otherwise nothing is written.
func (u *UseCase) RemoveMetadataDeployed(ctx context.Context, in *MetadataDeployedInput) (out *MetadataDeployedOutput, err error) {
	ctx, cleanup := logging.Span(ctx, "fleet", "RemoveMetadataDeployed")
	defer func() { cleanup(err) }()

	im, m, err := u.imageManager(ctx, in)
	if err != nil {
		return nil, err
	}
	md, err := im.ImageMetadata(ctx, m)
	if err != nil {
		return nil, err
	}
	if md[DeployedKey] == "" {
		return &MetadataDeployedOutput{Machine: m, Metadata: md}, nil
	}
	if err := im.DeleteImageMetadata(ctx, m, DeployedKey); err != nil {
		return nil, err
	}
	delete(md, DeployedKey)
	return &MetadataDeployedOutput{Machine: m, Metadata: md, Changed: true}, nil
}
