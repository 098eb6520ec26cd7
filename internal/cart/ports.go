package cart

import (
	"context"
	"time"
)

// StorageKey is the key the cart is persisted under.
const StorageKey = "@RocketShoes:cart"

type Inventory interface {
	GetStock(ctx context.Context, productID int) (Stock, error)
	GetProduct(ctx context.Context, productID int) (Product, error)
}

// Storage is a durable key-value string store. Read reports found=false
// when the key has never been written.
type Storage interface {
	Read(ctx context.Context, key string) (value string, found bool, err error)
	Write(ctx context.Context, key, value string) error
}

type Notification struct {
	ID        string    `json:"id"`
	Reason    Reason    `json:"reason"`
	Message   string    `json:"message"`
	ProductID int       `json:"product_id"`
	At        time.Time `json:"at"`
}

// Notifier receives user-facing notifications. Notify must not block.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}
