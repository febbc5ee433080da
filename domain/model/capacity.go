package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Count is an instance count that is either bounded or unbounded.
// Zero-footprint sizes yield unbounded counts.
type Count struct {
	n         int64
	unbounded bool
}

// Bounded returns a finite count.
func Bounded(n int64) Count { return Count{n: n} }

// Unbounded returns a count with no upper limit.
func Unbounded() Count { return Count{unbounded: true} }

// IsUnbounded reports whether c has no limit.
func (c Count) IsUnbounded() bool { return c.unbounded }

// Value returns the finite value and true, or 0 and false when unbounded.
func (c Count) Value() (int64, bool) {
	if c.unbounded {
		return 0, false
	}
	return c.n, true
}

// Less orders counts with unbounded greater than every finite value.
func (c Count) Less(o Count) bool {
	switch {
	case c.unbounded:
		return false
	case o.unbounded:
		return true
	default:
		return c.n < o.n
	}
}

// MinCount returns the smaller of a and b.
func MinCount(a, b Count) Count {
	if b.Less(a) {
		return b
	}
	return a
}

func (c Count) String() string {
	if c.unbounded {
		return "unbounded"
	}
	return strconv.FormatInt(c.n, 10)
}

func (c Count) MarshalJSON() ([]byte, error) {
	if c.unbounded {
		return []byte(`"unbounded"`), nil
	}
	return []byte(strconv.FormatInt(c.n, 10)), nil
}

func (c *Count) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "unbounded" {
			return fmt.Errorf("invalid count %q", s)
		}
		*c = Unbounded()
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid count: %w", err)
	}
	*c = Bounded(n)
	return nil
}

// Figure is the (maximum, remaining) instance count for one resource dimension.
// Known is false when the size carries no footprint for the dimension.
type Figure struct {
	Max       Count `json:"max"`
	Remaining Count `json:"remaining"`
	Known     bool  `json:"known"`
}

// Occupancy is the derived capacity of one size on the hypervisor pool.
type Occupancy struct {
	CPU       Figure `json:"cpu"`
	RAM       Figure `json:"ram"`
	Disk      Figure `json:"disk"`
	Total     Count  `json:"total"`
	Remaining Count  `json:"remaining"`
}

// HypervisorStats are the pool-wide counters reported by the compute service.
type HypervisorStats struct {
	VCPUs        int64 `json:"vcpus"`
	VCPUsUsed    int64 `json:"vcpusUsed"`
	MemoryMB     int64 `json:"memoryMB"`
	MemoryMBUsed int64 `json:"memoryMBUsed"`
	LocalGB      int64 `json:"localGB"`
	LocalGBUsed  int64 `json:"localGBUsed"`
}
