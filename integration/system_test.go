//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"
)

var (
	baseURL      = getenv("E2E_BASE_URL", "http://localhost:8080")
	inventoryURL = getenv("E2E_INVENTORY_URL", "http://localhost:3333")
)

type lineItem struct {
	ID     int    `json:"id"`
	Amount int    `json:"amount"`
	Title  string `json:"title"`
}

type opResp struct {
	Status       string     `json:"status"`
	Cart         []lineItem `json:"cart"`
	Notification *struct {
		Reason string `json:"reason"`
	} `json:"notification"`
}

func TestSystem_E2E_Cart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, inventoryURL+"/readyz")
	waitReady(t, ctx, baseURL+"/readyz")

	var stock []struct {
		ID     int `json:"id"`
		Amount int `json:"amount"`
	}
	doJSON(t, http.MethodGet, inventoryURL+"/stock", nil, &stock, 200)
	if len(stock) == 0 {
		t.Fatalf("expected non-empty stock")
	}

	pid, avail := 0, 0
	for _, s := range stock {
		if s.Amount > avail {
			pid, avail = s.ID, s.Amount
		}
	}
	if avail < 2 {
		t.Fatalf("need a product with at least 2 units in stock: %+v", stock)
	}

	var sess struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/session", nil, &sess, 201)
	if sess.Token == "" {
		t.Fatalf("empty token")
	}

	var op opResp
	doJSONAuth(t, http.MethodPost, baseURL+"/cart/items", sess.Token, map[string]any{"product_id": pid}, &op, 200)
	if len(op.Cart) != 1 || op.Cart[0].ID != pid || op.Cart[0].Amount != 1 || op.Cart[0].Title == "" {
		t.Fatalf("after add: %+v", op)
	}

	doJSONAuth(t, http.MethodPut, baseURL+"/cart/items/"+strconv.Itoa(pid), sess.Token, map[string]any{"amount": avail}, &op, 200)

	op = opResp{}
	doJSONAuth(t, http.MethodPost, baseURL+"/cart/items", sess.Token, map[string]any{"product_id": pid}, &op, 409)
	if op.Notification == nil || op.Notification.Reason != "out_of_stock" {
		t.Fatalf("expected out_of_stock: %+v", op)
	}

	if os.Getenv("E2E_RESTART_STOREFRONT") == "1" {
		restartContainer(t, ctx, "storefront")
		waitReady(t, ctx, baseURL+"/readyz")
	}

	var got struct {
		Cart []lineItem `json:"cart"`
	}
	doJSONAuth(t, http.MethodGet, baseURL+"/cart", sess.Token, nil, &got, 200)
	if len(got.Cart) != 1 || got.Cart[0].Amount != avail {
		t.Fatalf("cart=%+v want %d x product %d", got.Cart, avail, pid)
	}

	doJSONAuth(t, http.MethodDelete, baseURL+"/cart/items/"+strconv.Itoa(pid), sess.Token, nil, &op, 200)
	if len(op.Cart) != 0 {
		t.Fatalf("after remove: %+v", op)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()
	doJSONAuth(t, method, url, "", body, out, want)
}

func doJSONAuth(t *testing.T, method, url, token string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
