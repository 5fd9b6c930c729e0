// ABOUTME: Value coercion engine for metafield writes
// ABOUTME: Turns loosely-typed inputs into the string encodings the API requires

package metafield

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Transform coerces value into the platform's string encoding for type t.
// The platform accepts only string payloads regardless of logical type, so
// every supported input shape normalizes to one canonical string here.
// Transforming an already-transformed string for the same type yields the
// same string again.
func Transform(value any, t Type) (string, error) {
	if t.List {
		return transformList(value, t)
	}

	switch t.Base {
	case KindJSON:
		return transformJSON(value, t)
	case KindNumberInteger:
		return transformInteger(value, t)
	case KindNumberDecimal:
		return transformDecimal(value, t)
	case KindBoolean:
		return transformBoolean(value), nil
	case KindDimension, KindVolume, KindWeight:
		return transformMeasurement(value, t)
	default:
		// Text and reference kinds, plus any vocabulary this package does not
		// enumerate yet: the natural string form passes through unvalidated.
		return stringify(value), nil
	}
}

// transformList encodes value as a JSON array of per-element transforms
// against the list's element type.
func transformList(value any, t Type) (string, error) {
	items := coerceSequence(value)
	elem := t.Element()

	encoded := make([]string, 0, len(items))
	for _, item := range items {
		s, err := Transform(item, elem)
		if err != nil {
			return "", err
		}
		encoded = append(encoded, s)
	}

	out, err := json.Marshal(encoded)
	if err != nil {
		return "", &InvalidValueError{Type: t, Reason: err.Error()}
	}
	return string(out), nil
}

// coerceSequence normalizes value into an ordered sequence. Strings are tried
// as JSON arrays first and fall back to a single-element sequence; any other
// scalar becomes a one-element sequence.
func coerceSequence(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items
	case string:
		// Only an actual JSON array counts: "null" unmarshals into a nil slice
		// without error and must stay a single element.
		var parsed []any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil && parsed != nil {
			return parsed
		}
		return []any{v}
	default:
		return []any{v}
	}
}

func transformJSON(value any, t Type) (string, error) {
	switch v := value.(type) {
	case string:
		// Parse and re-serialize so an invalid JSON string never reaches the
		// platform as a "valid" json metafield.
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("invalid JSON string: %s", truncate(v, 120))}
		}
		out, err := json.Marshal(parsed)
		if err != nil {
			return "", &InvalidValueError{Type: t, Reason: err.Error()}
		}
		return string(out), nil
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return "", &InvalidValueError{Type: t, Reason: err.Error()}
		}
		return string(out), nil
	}
}

func transformInteger(value any, t Type) (string, error) {
	switch v := value.(type) {
	case string:
		// Float parse first so "123.0" is accepted and truncates to 123.
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("cannot convert %q to integer", v)}
		}
		return truncateToInteger(f, v, t)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("cannot convert %q to integer", v.String())}
		}
		return truncateToInteger(f, v.String(), t)
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return truncateToInteger(float64(v), v, t)
	case float64:
		return truncateToInteger(v, v, t)
	default:
		return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("requires a numeric value, got %T", value)}
	}
}

// truncateToInteger drops the fractional part of f. NaN, infinities, and
// magnitudes beyond int64 are rejected: the conversion would otherwise produce
// an implementation-defined value the platform would store as a valid integer.
func truncateToInteger(f float64, src any, t Type) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
		return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("%v is outside the integer range", src)}
	}
	return strconv.FormatInt(int64(f), 10), nil
}

func transformDecimal(value any, t Type) (string, error) {
	switch v := value.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("cannot convert %q to decimal", v)}
		}
		return formatDecimal(f, v, t)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("cannot convert %q to decimal", v.String())}
		}
		return formatDecimal(f, v.String(), t)
	case int:
		return formatDecimal(float64(v), v, t)
	case int32:
		return formatDecimal(float64(v), v, t)
	case int64:
		return formatDecimal(float64(v), v, t)
	case float32:
		return formatDecimal(float64(v), v, t)
	case float64:
		return formatDecimal(v, v, t)
	default:
		return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("requires a numeric value, got %T", value)}
	}
}

// formatDecimal renders f in standard decimal notation. NaN and infinities
// have no decimal form and are rejected rather than encoded as their Go
// string spellings.
func formatDecimal(f float64, src any, t Type) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("%v is not a finite decimal", src)}
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// transformBoolean never fails: exact "true"/"false" strings pass through
// lowercased, everything else coerces by truthiness.
func transformBoolean(value any) string {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case string:
		lower := strings.ToLower(v)
		if lower == "true" || lower == "false" {
			return lower
		}
		return strconv.FormatBool(v != "")
	default:
		return strconv.FormatBool(truthy(value))
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// transformMeasurement handles dimension, volume and weight: composite values
// the platform encodes as a JSON object like {"value": 2.5, "unit": "kg"}.
func transformMeasurement(value any, t Type) (string, error) {
	switch v := value.(type) {
	case map[string]any:
		out, err := json.Marshal(v)
		if err != nil {
			return "", &InvalidValueError{Type: t, Reason: err.Error()}
		}
		return string(out), nil
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("invalid JSON for %s: %s", t.Base, truncate(v, 120))}
		}
		out, err := json.Marshal(parsed)
		if err != nil {
			return "", &InvalidValueError{Type: t, Reason: err.Error()}
		}
		return string(out), nil
	default:
		return "", &InvalidValueError{Type: t, Reason: fmt.Sprintf("%s requires a mapping or JSON string, got %T", t.Base, value)}
	}
}

// stringify renders a value's natural string form for text-like kinds.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
