package openstack

import (
	"context"
	"fmt"
	"sort"

	"github.com/gophercloud/gophercloud/v2/openstack/image/v2/images"

	"github.com/kompox/cloudmeta/domain/model"
)

// ImageMetadata returns the Glance custom properties of the image as strings.
func (d *driver) ImageMetadata(ctx context.Context, m *model.Machine) (_ map[string]string, err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ImageMetadata")
	defer func() { cleanup(err) }()
	return d.imageProperties(ctx, m.ID)
}

func (d *driver) imageProperties(ctx context.Context, id string) (map[string]string, error) {
	sc, err := require(d.clients.image, "image")
	if err != nil {
		return nil, err
	}
	img, err := images.Get(ctx, sc, id).Extract()
	if err != nil {
		return nil, fmt.Errorf("getting image %s: %w", id, err)
	}
	out := make(map[string]string, len(img.Properties))
	for k, v := range img.Properties {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprint(v)
		}
	}
	return out, nil
}

// SetImageMetadata adds or replaces every key in md. Keys absent from md are
// left untouched.
func (d *driver) SetImageMetadata(ctx context.Context, m *model.Machine, md map[string]string) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "SetImageMetadata")
	defer func() { cleanup(err) }()

	current, err := d.imageProperties(ctx, m.ID)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var patch images.UpdateOpts
	for _, k := range keys {
		old, exists := current[k]
		switch {
		case !exists:
			patch = append(patch, images.UpdateImageProperty{Op: images.AddOp, Name: k, Value: md[k]})
		case old != md[k]:
			patch = append(patch, images.UpdateImageProperty{Op: images.ReplaceOp, Name: k, Value: md[k]})
		}
	}
	if len(patch) == 0 {
		return nil
	}
	if _, err := images.Update(ctx, d.clients.image, m.ID, patch).Extract(); err != nil {
		return fmt.Errorf("updating image %s: %w", m.ID, err)
	}
	return nil
}

func (d *driver) DeleteImageMetadata(ctx context.Context, m *model.Machine, key string) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "DeleteImageMetadata")
	defer func() { cleanup(err) }()

	sc, err := require(d.clients.image, "image")
	if err != nil {
		return err
	}
	patch := images.UpdateOpts{images.UpdateImageProperty{Op: images.RemoveOp, Name: key}}
	if _, err := images.Update(ctx, sc, m.ID, patch).Extract(); err != nil {
		return fmt.Errorf("removing %s from image %s: %w", key, m.ID, err)
	}
	return nil
}
