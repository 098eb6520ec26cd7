package inventory

import "context"

type Store interface {
	Ping(ctx context.Context) error
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int) (Product, bool, error)
	ListStock(ctx context.Context) ([]Stock, error)
	GetStock(ctx context.Context, id int) (Stock, bool, error)
}
