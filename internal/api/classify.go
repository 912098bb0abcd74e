package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/autocare/autocare/internal/errors"
)

// Classify maps a non-2xx response to the error taxonomy.
func Classify(status int, body []byte) *errors.APIError {
	switch {
	case status == http.StatusBadRequest:
		return errors.NewValidationError(FieldErrors(body))
	case status == http.StatusNotFound:
		return errors.NewNotFoundError("resource").WithMessage(Detail(body))
	case status >= 500:
		return errors.NewServerError(status)
	default:
		return errors.NewRejectedError(status, Detail(body))
	}
}

// Detail extracts the human-readable message from an error body. It looks at
// "detail", "error" and "message" in that order.
func Detail(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := payload[key]; ok {
			if s := flatten(v); len(s) > 0 {
				return strings.Join(s, " ")
			}
		}
	}
	return ""
}

// FieldErrors decodes a 400 body of the form {"field": ["msg", ...], ...}.
// Scalar values and nested objects are flattened to strings.
func FieldErrors(body []byte) map[string][]string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		var list []any
		if json.Unmarshal(body, &list) == nil && len(list) > 0 {
			return map[string][]string{"non_field_errors": flatten(list)}
		}
		return nil
	}
	fields := make(map[string][]string, len(payload))
	for key, v := range payload {
		if msgs := flatten(v); len(msgs) > 0 {
			fields[key] = msgs
		}
	}
	return fields
}

func flatten(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, flatten(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			for _, msg := range flatten(val[k]) {
				out = append(out, k+": "+msg)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(val)}
	}
}
