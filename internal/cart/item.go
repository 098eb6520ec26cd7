package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	fieldID     = "id"
	fieldAmount = "amount"
	fieldPrice  = "price"
)

var errMissingID = errors.New("missing id")

// Attrs is the opaque product payload carried by a line item. Values are
// kept as raw JSON so they round-trip byte for byte.
type Attrs map[string]json.RawMessage

func (a Attrs) clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// String returns the attribute as a string, or "" when absent or not a string.
func (a Attrs) String(key string) string {
	raw, ok := a[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Decimal parses the attribute as a number. Both JSON numbers and numeric
// strings are accepted.
func (a Attrs) Decimal(key string) (decimal.Decimal, bool) {
	raw, ok := a[key]
	if !ok {
		return decimal.Zero, false
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, false
	}
	return d, true
}

type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Product is a catalog record as returned by the inventory service. Any
// "amount" the service sends is ignored.
type Product struct {
	ID    int
	Attrs Attrs
}

func (p Product) MarshalJSON() ([]byte, error) {
	return marshalFlat(p.ID, nil, p.Attrs)
}

func (p *Product) UnmarshalJSON(b []byte) error {
	id, _, attrs, err := unmarshalFlat(b)
	if err != nil {
		return err
	}
	p.ID, p.Attrs = id, attrs
	return nil
}

type LineItem struct {
	ID     int
	Amount int
	Attrs  Attrs
}

func newLineItem(id int, p Product) LineItem {
	return LineItem{ID: id, Amount: 1, Attrs: p.Attrs.clone()}
}

func (it LineItem) MarshalJSON() ([]byte, error) {
	amount := it.Amount
	return marshalFlat(it.ID, &amount, it.Attrs)
}

func (it *LineItem) UnmarshalJSON(b []byte) error {
	id, amount, attrs, err := unmarshalFlat(b)
	if err != nil {
		return err
	}
	it.ID, it.Amount, it.Attrs = id, amount, attrs
	return nil
}

func marshalFlat(id int, amount *int, attrs Attrs) ([]byte, error) {
	m := make(map[string]json.RawMessage, len(attrs)+2)
	for k, v := range attrs {
		m[k] = v
	}

	rawID, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	m[fieldID] = rawID

	if amount != nil {
		rawAmount, err := json.Marshal(*amount)
		if err != nil {
			return nil, err
		}
		m[fieldAmount] = rawAmount
	}

	return json.Marshal(m)
}

func unmarshalFlat(b []byte) (id, amount int, attrs Attrs, err error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return 0, 0, nil, err
	}

	rawID, ok := m[fieldID]
	if !ok {
		return 0, 0, nil, errMissingID
	}
	if err := json.Unmarshal(rawID, &id); err != nil {
		return 0, 0, nil, fmt.Errorf("id: %w", err)
	}
	delete(m, fieldID)

	if rawAmount, ok := m[fieldAmount]; ok {
		if err := json.Unmarshal(rawAmount, &amount); err != nil {
			return 0, 0, nil, fmt.Errorf("amount: %w", err)
		}
		delete(m, fieldAmount)
	}

	if len(m) > 0 {
		attrs = Attrs(m)
	}
	return id, amount, attrs, nil
}
