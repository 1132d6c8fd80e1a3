package storefrontapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/model"
)

// orderIDPaths lists where order ids have been seen in create-order
// responses, most specific first.
var orderIDPaths = [][]string{
	{"data", "id"},
	{"data", "orderId"},
	{"data", "order", "id"},
	{"id"},
	{"orderId"},
	{"order", "id"},
}

// ExtractOrderID looks for an order id in a create-order response body.
// String and numeric ids are accepted.
func ExtractOrderID(body []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root map[string]interface{}
	if err := dec.Decode(&root); err != nil {
		return "", false
	}

	for _, path := range orderIDPaths {
		if id, ok := lookup(root, path); ok {
			return id, true
		}
	}
	return "", false
}

// Confirmation builds the order confirmation for a create-order response,
// synthesizing an ORD-<unix millis> id when the body carries none.
func Confirmation(body []byte, now time.Time) model.OrderConfirmation {
	var env Envelope
	_ = json.Unmarshal(body, &env)

	if id, ok := ExtractOrderID(body); ok {
		return model.OrderConfirmation{OrderID: id, Message: env.Message}
	}
	return model.OrderConfirmation{
		OrderID:     fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Synthesized: true,
		Message:     env.Message,
	}
}

func lookup(node map[string]interface{}, path []string) (string, bool) {
	for i, key := range path {
		value, ok := node[key]
		if !ok {
			return "", false
		}
		if i == len(path)-1 {
			return idString(value)
		}
		if node, ok = value.(map[string]interface{}); !ok {
			return "", false
		}
	}
	return "", false
}

func idString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
