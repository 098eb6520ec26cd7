package inventory_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/inventory"
)

var _ cart.Inventory = (*inventory.Client)(nil)

func newInventoryTS(t *testing.T, store inventory.Store) *httptest.Server {
	t.Helper()

	h := inventory.NewHandler(&inventory.Server{Store: store, Log: zap.NewNop()}, inventory.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "inventory",
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_GetStock(t *testing.T) {
	ts := newInventoryTS(t, inventory.NewMemStore())
	c := inventory.NewClient(ts.URL+"/", time.Second)

	st, err := c.GetStock(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if st.ID != 1 || st.Amount != 3 {
		t.Fatalf("stock=%+v", st)
	}
}

func TestClient_GetProduct(t *testing.T) {
	ts := newInventoryTS(t, inventory.NewMemStore())
	c := inventory.NewClient(ts.URL, time.Second)

	p, err := c.GetProduct(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.ID != 2 {
		t.Fatalf("id=%d", p.ID)
	}
	if p.Attrs.String("title") == "" || p.Attrs.String("image") == "" {
		t.Fatalf("attrs=%v", p.Attrs)
	}
	price, ok := p.Attrs.Decimal("price")
	if !ok || price.String() != "139.9" {
		t.Fatalf("price=%s ok=%v", price, ok)
	}
}

func TestClient_Errors(t *testing.T) {
	ts := newInventoryTS(t, inventory.NewMemStore())
	c := inventory.NewClient(ts.URL, time.Second)

	if _, err := c.GetStock(context.Background(), 404); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("missing stock: err=%v", err)
	}
	if _, err := c.GetProduct(context.Background(), 404); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("missing product: err=%v", err)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)

	if _, err := inventory.NewClient(broken.URL, time.Second).GetStock(context.Background(), 1); !errors.Is(err, inventory.ErrBadStatus) {
		t.Fatalf("bad status: err=%v", err)
	}

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	if _, err := inventory.NewClient(downURL, time.Second).GetStock(context.Background(), 1); !errors.Is(err, inventory.ErrUnavailable) {
		t.Fatalf("unreachable: err=%v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	c := inventory.NewClient(slow.URL, 50*time.Millisecond)
	if _, err := c.GetStock(context.Background(), 1); !errors.Is(err, inventory.ErrUnavailable) {
		t.Fatalf("err=%v want %v", err, inventory.ErrUnavailable)
	}
}
