package cart

import "errors"

var (
	ErrItemNotFound = errors.New("item not in cart")
	ErrOutOfStock   = errors.New("out of stock")
)

type Status string

const (
	StatusOK       Status = "ok"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
	// StatusSkipped marks a request that was ignored without notice.
	StatusSkipped Status = "skipped"
)

type Reason string

const (
	ReasonNone         Reason = ""
	ReasonOutOfStock   Reason = "out_of_stock"
	ReasonAddFailed    Reason = "add_failed"
	ReasonRemoveFailed Reason = "remove_failed"
	ReasonUpdateFailed Reason = "update_failed"
)

var messages = map[Reason]string{
	ReasonOutOfStock:   "Requested quantity is out of stock",
	ReasonAddFailed:    "Failed to add product",
	ReasonRemoveFailed: "Failed to remove product",
	ReasonUpdateFailed: "Failed to change product quantity",
}

func (r Reason) Message() string { return messages[r] }

// Result is the outcome of a cart operation. Cart is always the snapshot
// after the operation, whether or not it changed anything.
type Result struct {
	Status Status
	Reason Reason
	Cart   Cart
	Err    error
}

func (r Result) OK() bool { return r.Status == StatusOK }
