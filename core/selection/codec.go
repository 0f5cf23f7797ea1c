package selection

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"storefront/core/types"
)

type record struct {
	ID    string          `json:"id"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

// Entry is one member of a set
type Entry struct {
	ID       string
	Snapshot types.Snapshot
}

// Encode serializes entries as [{"id","name","price":"<decimal>","image"}]
func Encode(entries []Entry) (string, error) {
	records := make([]record, 0, len(entries))
	for _, e := range entries {
		records = append(records, record{
			ID:    e.ID,
			Name:  e.Snapshot.Name,
			Price: e.Snapshot.Price,
			Image: e.Snapshot.Image,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeResult is the outcome of reading a persisted set
type DecodeResult struct {
	Entries []Entry
	Legacy  int
	Dropped int
}

// NeedsRewrite reports whether the stored value differs from its canonical encoding
func (r DecodeResult) NeedsRewrite() bool {
	return r.Legacy+r.Dropped > 0
}

// Decode reads a persisted set. Besides the canonical shape it accepts a bare array of
// ids and an array of product objects with numeric prices. Repeated ids keep the
// first snapshot.
func Decode(raw string) (DecodeResult, error) {
	var res DecodeResult

	if !gjson.Valid(raw) {
		return res, fmt.Errorf("not valid JSON")
	}
	doc := gjson.Parse(raw)
	if !doc.IsArray() {
		return res, fmt.Errorf("expected an array, got %s", doc.Type)
	}

	seen := make(map[string]bool)
	for _, v := range doc.Array() {
		entry, legacy, ok := decodeEntry(v)
		if !ok || seen[entry.ID] {
			res.Dropped++
			continue
		}
		if legacy {
			res.Legacy++
		}
		seen[entry.ID] = true
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func decodeEntry(v gjson.Result) (entry Entry, legacy bool, ok bool) {
	switch {
	case v.Type == gjson.String:
		entry.ID = v.String()
		return entry, true, entry.ID != ""
	case v.Type == gjson.Number:
		entry.ID = v.Raw
		return entry, true, true
	case !v.IsObject():
		return entry, false, false
	}

	id := v.Get("id")
	switch id.Type {
	case gjson.String:
		entry.ID = id.String()
	case gjson.Number:
		entry.ID = id.Raw
		legacy = true
	default:
		return entry, false, false
	}
	if entry.ID == "" {
		return entry, false, false
	}

	price := v.Get("price")
	switch price.Type {
	case gjson.String:
		d, err := decimal.NewFromString(price.String())
		if err != nil {
			return entry, false, false
		}
		entry.Snapshot.Price = d
	case gjson.Number:
		d, err := decimal.NewFromString(price.Raw)
		if err != nil {
			return entry, false, false
		}
		entry.Snapshot.Price = d
		legacy = true
	case gjson.Null:
	default:
		return entry, false, false
	}

	entry.Snapshot.Name = v.Get("name").String()
	entry.Snapshot.Image = v.Get("image").String()
	return entry, legacy, true
}
