// pkg/converter/values.go
package converter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// nullMarkers are the textual forms read back as missing values
var nullMarkers = map[string]bool{
	"":     true,
	"null": true,
	"NULL": true,
	"nil":  true,
	"NIL":  true,
	"NaN":  true,
	"nan":  true,
	"None": true,
	"NA":   true,
	"N/A":  true,
}

// IsNullString determines if a text cell should be treated as missing
func IsNullString(s string) bool {
	return nullMarkers[strings.TrimSpace(s)]
}

// ToFloat attempts to convert a value to float64
func ToFloat(v interface{}) (float64, error) {
	if v == nil {
		return 0, errors.New("nil value")
	}

	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return val.Float64()
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		return strconv.ParseFloat(cleaned, 64)
	case []byte:
		cleaned := strings.TrimSpace(string(val))
		if cleaned == "" {
			return 0, errors.New("empty byte array")
		}
		return strconv.ParseFloat(cleaned, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

// FormatValue renders a cell as CSV text. Missing values become empty
// strings, floats always carry a decimal point and nested structures are
// written as JSON.
func FormatValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case float64:
		return formatFloat(val), nil
	case float32:
		return formatFloat(float64(val)), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case json.Number:
		return val.String(), nil
	case time.Time:
		return val.Format(time.RFC3339), nil
	}

	kind := reflect.ValueOf(v).Kind()
	if kind == reflect.Map || kind == reflect.Slice || kind == reflect.Array || kind == reflect.Struct {
		encoded, err := EncodeObject(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
	return fmt.Sprintf("%v", v), nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// parseBool accepts the spellings written by FormatValue and common exporters
func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}
