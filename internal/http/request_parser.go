// Package http provides the HTTP server and handler implementations.
//
// This file parses the loosely-typed bill payloads accepted by the save and
// download endpoints. Clients send quantities and amounts as JSON numbers or
// as strings interchangeably; coercion into the strict domain types happens
// here, and any field that cannot be coerced fails the whole payload.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"billsplit/internal/core"
)

var errInvalidPayload = errors.New("invalid bill payload")

// parseBillRequest decodes a bill document from the request body.
// Missing fields keep their zero values; billId and itemId default to the
// unassigned marker so the store hands out fresh identifiers.
func parseBillRequest(body []byte) (core.Bill, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return core.Bill{}, err
	}

	b := core.NewBill()
	if v, ok := raw["billId"]; ok {
		if b.BillID, err = intValue(v); err != nil {
			return core.Bill{}, fmt.Errorf("%w: billId: %v", errInvalidPayload, err)
		}
	}
	b.Store = sanitizeInput(stringValue(raw["store"]))
	b.Address = sanitizeInput(stringValue(raw["address"]))
	b.Phone = sanitizeInput(stringValue(raw["phone"]))
	b.BillNumber = sanitizeInput(stringValue(raw["billNumber"]))
	b.BillDate = sanitizeInput(stringValue(raw["billDate"]))
	b.Time = sanitizeInput(stringValue(raw["time"]))
	b.Cashier = sanitizeInput(stringValue(raw["cashier"]))
	b.PaidBy = sanitizeInput(stringValue(raw["paidBy"]))

	if b.Participants, err = stringSliceValue(raw["participants"]); err != nil {
		return core.Bill{}, fmt.Errorf("%w: participants: %v", errInvalidPayload, err)
	}
	if b.Items, err = itemsValue(raw["items"]); err != nil {
		return core.Bill{}, err
	}

	return b, nil
}

// parseItemsRequest decodes a bare item list, as posted to the items
// download endpoint.
func parseItemsRequest(body []byte) ([]core.ItemProjection, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidPayload, err)
	}

	items := make([]core.ItemProjection, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: items[%d]: not an object", errInvalidPayload, i)
		}
		item, err := parseItem(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: items[%d]: %v", errInvalidPayload, i, err)
		}
		items = append(items, item.Projection(true))
	}
	return items, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	return raw, nil
}

func itemsValue(v any) ([]core.Item, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: items: not a list", errInvalidPayload)
	}

	items := make([]core.Item, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: items[%d]: not an object", errInvalidPayload, i)
		}
		item, err := parseItem(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: items[%d]: %v", errInvalidPayload, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseItem(obj map[string]any) (core.Item, error) {
	item := core.Item{ItemID: core.UnassignedID}

	var err error
	if v, ok := obj["itemId"]; ok {
		if item.ItemID, err = intValue(v); err != nil {
			return core.Item{}, fmt.Errorf("itemId: %v", err)
		}
	}
	item.Name = sanitizeInput(stringValue(obj["name"]))
	if v, ok := obj["quantity"]; ok {
		if item.Quantity, err = intValue(v); err != nil {
			return core.Item{}, fmt.Errorf("quantity: %v", err)
		}
	}
	if v, ok := obj["rate"]; ok {
		if item.Rate, err = floatValue(v); err != nil {
			return core.Item{}, fmt.Errorf("rate: %v", err)
		}
	}
	if v, ok := obj["value"]; ok {
		if item.Value, err = floatValue(v); err != nil {
			return core.Item{}, fmt.Errorf("value: %v", err)
		}
	}
	if item.Participants, err = stringSliceValue(obj["participants"]); err != nil {
		return core.Item{}, fmt.Errorf("participants: %v", err)
	}
	return item, nil
}

// stringValue converts a decoded JSON value to a string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// intValue coerces a decoded JSON value to an int, accepting numbers and
// numeric strings.
func intValue(v any) (int, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", val.String())
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", val)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("not an integer: %v", v)
	}
}

// floatValue coerces a decoded JSON value to a float64, accepting numbers
// and numeric strings.
func floatValue(v any) (float64, error) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", val.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", val)
		}
		return f, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func stringSliceValue(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, errors.New("not a list")
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			s = stringValue(entry)
			if s == "" {
				return nil, fmt.Errorf("not a string: %v", entry)
			}
		}
		out = append(out, sanitizeInput(s))
	}
	return out, nil
}
