package tools

import (
	"fmt"
	"strconv"
	"strings"
)

// stringParam returns a trimmed string argument, or "" when absent
func stringParam(params map[string]interface{}, key string) string {
	if s, ok := params[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// requiredString returns a non-empty string argument
func requiredString(params map[string]interface{}, key string) (string, error) {
	s := stringParam(params, key)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// intParam accepts JSON numbers and numeric strings
func intParam(params map[string]interface{}, key string) (int, error) {
	switch v := params[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return int(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid %s: expected a number", key)
	}
}

// boolParam accepts JSON booleans and boolean strings; set reports presence
func boolParam(params map[string]interface{}, key string) (value bool, set bool, err error) {
	switch v := params[key].(type) {
	case nil:
		return false, false, nil
	case bool:
		return v, true, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false, fmt.Errorf("invalid %s: %w", key, err)
		}
		return b, true, nil
	default:
		return false, false, fmt.Errorf("invalid %s: expected a boolean", key)
	}
}
