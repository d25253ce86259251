package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecodeWebhookBody decodes a notification body exactly as received.
// Numbers are kept as json.Number so signature inputs keep their
// original textual form.
func DecodeWebhookBody(raw []byte) (map[string]any, error) {
	body, err := DecodeJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("decode webhook body: %w", err)
	}
	return body, nil
}

// DecodeJSONObject decodes raw as a JSON object using json.Number for numbers.
func DecodeJSONObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not a JSON object")
	}
	return obj, nil
}

// StringField returns body[key] rendered as a string. Missing and null
// values yield "".
func StringField(body map[string]any, key string) string {
	switch v := body[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// ParseAmount parses a numeric string such as "100000.00", returning 0
// when s is not a number.
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// RawMetadata wraps a gateway payload for PaymentStatusResponse.Metadata.
// A payload that is not a JSON object is kept as a string.
func RawMetadata(raw []byte) map[string]any {
	decoded, err := DecodeJSONObject(raw)
	if err != nil {
		return map[string]any{"raw": string(raw)}
	}
	return map[string]any{"raw": decoded}
}
