package cart

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Cart is an ordered list of line items, unique by ID.
type Cart []LineItem

func (c Cart) Index(id int) int {
	for i, it := range c {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) Find(id int) (LineItem, bool) {
	if i := c.Index(id); i >= 0 {
		return c[i], true
	}
	return LineItem{}, false
}

// Clone copies the item list. Attrs are shared: they are never mutated
// after an item is first inserted.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) Without(id int) Cart {
	out := make(Cart, 0, len(c))
	for _, it := range c {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func (c Cart) withAmount(i, amount int) Cart {
	out := c.Clone()
	out[i].Amount = amount
	return out
}

func (c Cart) Encode() (string, error) {
	if c == nil {
		c = Cart{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func Parse(s string) (Cart, error) {
	if strings.TrimSpace(s) == "" {
		return Cart{}, nil
	}
	var c Cart
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}

// decodeLenient parses a stored cart element by element. Elements that do
// not decode as line items are skipped and counted instead of failing the
// whole value.
func decodeLenient(s string) (Cart, int, error) {
	if strings.TrimSpace(s) == "" {
		return Cart{}, 0, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, 0, err
	}

	out := make(Cart, 0, len(raw))
	for _, el := range raw {
		var it LineItem
		if err := json.Unmarshal(el, &it); err != nil {
			continue
		}
		out = append(out, it)
	}
	return out, len(raw) - len(out), nil
}

// normalize drops entries that break the cart invariants. It reports how
// many were dropped.
func normalize(c Cart) (Cart, int) {
	out := make(Cart, 0, len(c))
	seen := make(map[int]struct{}, len(c))
	for _, it := range c {
		if it.Amount < 1 {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out, len(c) - len(out)
}

type Summary struct {
	Lines    int             `json:"lines"`
	Units    int             `json:"units"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Summary totals the cart. Items without a usable price count towards
// Lines and Units only.
func (c Cart) Summary() Summary {
	s := Summary{Lines: len(c), Subtotal: decimal.Zero}
	for _, it := range c {
		s.Units += it.Amount
		if price, ok := it.Attrs.Decimal(fieldPrice); ok {
			s.Subtotal = s.Subtotal.Add(price.Mul(decimal.NewFromInt(int64(it.Amount))))
		}
	}
	return s
}
