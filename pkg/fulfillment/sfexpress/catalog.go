package sfexpress

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tournevent/sfbridge/pkg/fulfillment"
)

// Carrier business-type codes for SF Express service classes.
const (
	businessTypeExpress     = "1" // 顺丰特快
	businessTypeStandard    = "2" // 顺丰标准 (陆运)
	businessTypeNextMorning = "5" // 顺丰次晨
	businessTypeSameDay     = "6" // 顺丰即日
)

// defaultCatalog returns the built-in option catalog wired to the given
// rate table. Options without a rate entry are still listed; price
// calculation for them degrades to the nominal fallback.
func defaultCatalog(rates RateTable) []fulfillment.Option {
	return []fulfillment.Option{
		{
			ID:           "sf-standard",
			DisplayName:  "顺丰标准",
			BusinessType: businessTypeStandard,
			PriceTypes:   []fulfillment.PriceType{fulfillment.PriceFlat, fulfillment.PriceCalculated},
			Rates:        rates[businessTypeStandard],
		},
		{
			ID:           "sf-express",
			DisplayName:  "顺丰特快",
			BusinessType: businessTypeExpress,
			PriceTypes:   []fulfillment.PriceType{fulfillment.PriceFlat, fulfillment.PriceCalculated},
			Rates:        rates[businessTypeExpress],
		},
		{
			ID:           "sf-next-morning",
			DisplayName:  "顺丰次晨",
			BusinessType: businessTypeNextMorning,
			PriceTypes:   []fulfillment.PriceType{fulfillment.PriceCalculated},
			Rates:        rates[businessTypeNextMorning],
		},
		{
			ID:           "sf-same-day",
			DisplayName:  "顺丰即日",
			BusinessType: businessTypeSameDay,
			PriceTypes:   []fulfillment.PriceType{fulfillment.PriceCalculated},
			Rates:        rates[businessTypeSameDay],
		},
	}
}

// normalizeBusinessType maps option identifiers and human-readable aliases
// onto the numeric carrier codes. Normalization is idempotent: a value that
// is already a carrier code maps to itself. Unknown non-empty values pass
// through unchanged so the carrier can reject them with a precise message.
func normalizeBusinessType(value any) string {
	if value == nil {
		return ""
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case float64:
		// JSON numbers decode to float64; the carrier codes are small ints.
		s = strconv.FormatInt(int64(v), 10)
	case int:
		s = strconv.Itoa(v)
	case json.Number:
		s = v.String()
	default:
		return ""
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "standard", businessTypeStandard:
		return businessTypeStandard
	case "express", businessTypeExpress:
		return businessTypeExpress
	case "next-morning", businessTypeNextMorning:
		return businessTypeNextMorning
	case "same-day", businessTypeSameDay:
		return businessTypeSameDay
	default:
		return strings.TrimSpace(s)
	}
}

// resolveOption maps an opaque option payload (a catalog id, or a raw
// business-type token under one of several legacy keys) onto a catalog
// entry. Absence is a normal, expected outcome: malformed input returns
// nil, never an error.
func (c *Client) resolveOption(payload map[string]any) *fulfillment.Option {
	if payload == nil {
		return nil
	}

	// Nested data blocks from the order pipeline carry the same keys.
	if data, ok := payload["data"].(map[string]any); ok {
		if opt := c.resolveOption(data); opt != nil {
			return opt
		}
	}

	businessType := normalizeBusinessType(firstPresent(payload, "businessType", "business_type", "productCode"))
	if businessType == "" {
		if id, ok := payload["id"].(string); ok {
			return c.optionByID(id)
		}
		return nil
	}

	for i := range c.options {
		if c.options[i].BusinessType == businessType {
			return &c.options[i]
		}
	}
	return nil
}

func (c *Client) optionByID(id string) *fulfillment.Option {
	for i := range c.options {
		if strings.EqualFold(c.options[i].ID, id) {
			return &c.options[i]
		}
	}
	return nil
}

func firstPresent(payload map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := payload[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
