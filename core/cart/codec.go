package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// record is the persisted shape of a line item
type record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Metadata  Metadata        `json:"metadata"`
}

// Encode serializes items in the canonical persisted shape
func Encode(items []LineItem) (string, error) {
	records := make([]record, 0, len(items))
	for _, it := range items {
		records = append(records, record(it))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeResult is the outcome of reading a persisted cart
type DecodeResult struct {
	// Items are the recovered line items, duplicates merged, in first-seen order
	Items []LineItem

	// Legacy counts entries read from the numeric-price shape
	Legacy int

	// Dropped counts entries matching no known shape
	Dropped int

	// Merged counts entries folded into an earlier entry with the same id
	Merged int

	// Clamped counts entries whose quantity was raised to 1
	Clamped int
}

// NeedsRewrite reports whether the stored value differs from its canonical encoding
func (r DecodeResult) NeedsRewrite() bool {
	return r.Legacy+r.Dropped+r.Merged+r.Clamped > 0
}

// Decode reads a persisted cart. Entries are accepted in the canonical shape
// ({"id","name","unitPrice":"<decimal>","quantity","metadata":{...}}) or the legacy
// shape ({"id": number|string, "name", "price": number, "image", "specs", "quantity"}).
// A value that is not a JSON array is an error; individual bad entries are dropped.
func Decode(raw string) (DecodeResult, error) {
	var res DecodeResult

	if !gjson.Valid(raw) {
		return res, fmt.Errorf("not valid JSON")
	}
	doc := gjson.Parse(raw)
	if !doc.IsArray() {
		return res, fmt.Errorf("expected an array, got %s", doc.Type)
	}

	index := make(map[string]int)
	for _, entry := range doc.Array() {
		item, legacy, ok := decodeEntry(entry)
		if !ok {
			res.Dropped++
			continue
		}
		if legacy {
			res.Legacy++
		}
		if item.Quantity < 1 {
			item.Quantity = 1
			res.Clamped++
		}
		if i, dup := index[item.ID]; dup {
			res.Items[i].Quantity += item.Quantity
			res.Merged++
			continue
		}
		index[item.ID] = len(res.Items)
		res.Items = append(res.Items, item)
	}
	return res, nil
}

func decodeEntry(entry gjson.Result) (item LineItem, legacy bool, ok bool) {
	if !entry.IsObject() {
		return item, false, false
	}

	id := entry.Get("id")
	switch id.Type {
	case gjson.String:
		item.ID = id.String()
	case gjson.Number:
		item.ID = id.Raw
		legacy = true
	default:
		return item, false, false
	}
	if item.ID == "" {
		return item, false, false
	}

	var price gjson.Result
	if p := entry.Get("unitPrice"); p.Exists() {
		price = p
		legacy = legacy || p.Type == gjson.Number
		item.Metadata = Metadata{
			Image: entry.Get("metadata.image").String(),
			Specs: entry.Get("metadata.specs").String(),
		}
	} else if p := entry.Get("price"); p.Exists() {
		price = p
		legacy = true
		item.Metadata = Metadata{
			Image: entry.Get("image").String(),
			Specs: entry.Get("specs").String(),
		}
	} else {
		return item, false, false
	}

	unit, err := parsePrice(price)
	if err != nil || unit.IsNegative() {
		return item, false, false
	}
	item.UnitPrice = unit
	item.Name = entry.Get("name").String()

	q := entry.Get("quantity")
	switch q.Type {
	case gjson.Number:
		item.Quantity = int(q.Int())
	case gjson.Null:
		item.Quantity = 1
		legacy = true
	default:
		return item, false, false
	}
	return item, legacy, true
}

// parsePrice reads a price from its JSON text so numeric legacy prices stay exact
func parsePrice(v gjson.Result) (decimal.Decimal, error) {
	switch v.Type {
	case gjson.String:
		return decimal.NewFromString(v.String())
	case gjson.Number:
		return decimal.NewFromString(v.Raw)
	default:
		return decimal.Zero, fmt.Errorf("price is %s", v.Type)
	}
}
