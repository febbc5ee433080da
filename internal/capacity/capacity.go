// Package capacity converts hypervisor counters into per-size instance counts.
package capacity

import (
	"context"
	"math"

	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

// Dimension returns how many instances of the given footprint fit in total and
// in the unused part of total. A zero footprint fits without limit. A negative
// footprint has no maximum but its remaining count is still the floored
// quotient. Oversubscribed pools (used > total) yield a negative remaining count.
func Dimension(footprint, total, used int64) model.Figure {
	if footprint == 0 {
		return model.Figure{Max: model.Unbounded(), Remaining: model.Unbounded(), Known: true}
	}
	f := float64(footprint)
	maxCount := model.Unbounded()
	if footprint > 0 {
		maxCount = model.Bounded(int64(math.Floor(float64(total) / f)))
	}
	return model.Figure{
		Max:       maxCount,
		Remaining: model.Bounded(int64(math.Floor(float64(total-used) / f))),
		Known:     true,
	}
}

// CPUResolver returns the CPU count of a size and whether one is known.
type CPUResolver func(size *model.Size) (int64, bool)

// ResolveCPU reads the vendor cpu field, then vcpus.
func ResolveCPU(size *model.Size) (int64, bool) {
	switch {
	case size.CPU != nil:
		return *size.CPU, true
	case size.VCPUs != nil:
		return *size.VCPUs, true
	default:
		return 0, false
	}
}

// Compute returns the occupancy of size on a pool described by stats.
// Total and Remaining are the minimum over the known dimensions.
func Compute(ctx context.Context, size *model.Size, stats *model.HypervisorStats, resolve CPUResolver) model.Occupancy {
	if resolve == nil {
		resolve = ResolveCPU
	}
	var occ model.Occupancy
	if cpu, ok := resolve(size); ok {
		occ.CPU = Dimension(cpu, stats.VCPUs, stats.VCPUsUsed)
	} else {
		logging.FromContext(ctx).Warn(ctx, "could not find a CPU value for size", "size", size.Name, "id", size.ID)
	}
	occ.RAM = Dimension(size.RAMMB, stats.MemoryMB, stats.MemoryMBUsed)
	occ.Disk = Dimension(size.DiskGB, stats.LocalGB, stats.LocalGBUsed)

	occ.Total, occ.Remaining = model.Unbounded(), model.Unbounded()
	for _, f := range []model.Figure{occ.CPU, occ.RAM, occ.Disk} {
		if !f.Known {
			continue
		}
		occ.Total = model.MinCount(occ.Total, f.Max)
		occ.Remaining = model.MinCount(occ.Remaining, f.Remaining)
	}
	return occ
}

// Annotate sets Occupancy on every size and returns sizes.
func Annotate(ctx context.Context, sizes []*model.Size, stats *model.HypervisorStats, resolve CPUResolver) []*model.Size {
	for _, s := range sizes {
		occ := Compute(ctx, s, stats, resolve)
		s.Occupancy = &occ
	}
	return sizes
}
