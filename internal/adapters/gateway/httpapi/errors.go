package httpapi

import (
	"bytes"
	"encoding/json"
)

const genericErrorMessage = "Something went wrong. Please try again."

// extractErrorMessage pulls a human-readable message out of an error
// payload. It prefers a "detail" string; otherwise it takes the value
// of the first object key in document order, unwrapping the first
// element when that value is an array of strings. Anything else falls
// back to a generic message.
func extractErrorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return genericErrorMessage
	}

	if raw, ok := fields["detail"]; ok {
		var detail string
		if err := json.Unmarshal(raw, &detail); err == nil && detail != "" {
			return detail
		}
	}

	if message := firstFieldMessage(body); message != "" {
		return message
	}

	return genericErrorMessage
}

// firstFieldMessage walks the payload token by token so the first key
// is the first key the server wrote, not map iteration order.
func firstFieldMessage(body []byte) string {
	decoder := json.NewDecoder(bytes.NewReader(body))

	if token, err := decoder.Token(); err != nil || token != json.Delim('{') {
		return ""
	}
	if !decoder.More() {
		return ""
	}
	if _, err := decoder.Token(); err != nil {
		return ""
	}

	var value any
	if err := decoder.Decode(&value); err != nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}

	return ""
}
