package grading

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseOptions normalises a stored option list. A value starting with '[' is
// decoded as a JSON array first; anything else, including JSON that fails to
// decode, is split on commas and trimmed. Empty input yields an empty list.
func ParseOptions(raw *string) []string {
	if raw == nil {
		return []string{}
	}

	value := strings.TrimSpace(*raw)
	if value == "" {
		return []string{}
	}

	if strings.HasPrefix(value, "[") {
		var decoded []interface{}
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			options := make([]string, 0, len(decoded))
			for _, item := range decoded {
				if item == nil {
					continue
				}
				options = append(options, optionString(item))
			}
			return options
		}
	}

	return splitAndTrim(value)
}

// EncodeOptions stores an option list as a JSON array.
func EncodeOptions(options []string) *string {
	if len(options) == 0 {
		return nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil
	}
	encoded := string(data)
	return &encoded
}

func optionString(item interface{}) string {
	switch v := item.(type) {
	case string:
		return v
	case float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
