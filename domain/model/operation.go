package model

import "time"

// OperationAction is the bulk action applied to every instance.
type OperationAction string

const (
	OperationActionStop    OperationAction = "stop"
	OperationActionDestroy OperationAction = "destroy"
)

// OperationStatus summarizes the item outcomes of an operation.
type OperationStatus string

const (
	OperationStatusSucceeded OperationStatus = "succeeded"
	OperationStatusPartial   OperationStatus = "partial"
	OperationStatusFailed    OperationStatus = "failed"
)

// ItemKind is the resource type an OperationItem refers to.
type ItemKind string

const (
	ItemKindInstance ItemKind = "instance"
	ItemKindNetwork  ItemKind = "network"
)

// ItemOutcome is the result for one item.
type ItemOutcome string

const (
	ItemSucceeded ItemOutcome = "succeeded"
	ItemFailed    ItemOutcome = "failed"
	ItemSkipped   ItemOutcome = "skipped"
)

// OperationItem records what happened to one instance or tenant network.
type OperationItem struct {
	Kind    ItemKind    `json:"kind"`
	ID      string      `json:"id"`
	Name    string      `json:"name,omitempty"`
	Outcome ItemOutcome `json:"outcome"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// Operation is a recorded bulk stop/destroy run.
type Operation struct {
	ID        string          `json:"id"`
	Provider  string          `json:"provider"`
	Action    OperationAction `json:"action"`
	Status    OperationStatus `json:"status"`
	RetryOf   string          `json:"retryOf,omitempty"`
	Items     []OperationItem `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Failed returns the items whose outcome is failed.
func (o *Operation) Failed() []OperationItem {
	var out []OperationItem
	for _, it := range o.Items {
		if it.Outcome == ItemFailed {
			out = append(out, it)
		}
	}
	return out
}

// Succeeded returns the items whose outcome is succeeded.
func (o *Operation) Succeeded() []OperationItem {
	var out []OperationItem
	for _, it := range o.Items {
		if it.Outcome == ItemSucceeded {
			out = append(out, it)
		}
	}
	return out
}

// Summarize derives the operation status from its items.
// An operation with no failed items succeeded, even when it touched nothing.
func (o *Operation) Summarize() OperationStatus {
	failed, succeeded := 0, 0
	for _, it := range o.Items {
		switch it.Outcome {
		case ItemFailed:
			failed++
		case ItemSucceeded:
			succeeded++
		}
	}
	switch {
	case failed == 0:
		o.Status = OperationStatusSucceeded
	case succeeded == 0:
		o.Status = OperationStatusFailed
	default:
		o.Status = OperationStatusPartial
	}
	return o.Status
}
