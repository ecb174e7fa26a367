// pkg/converter/object.go
package converter

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// EncodeObject serializes a nested structure (mapping, slice or struct) as JSON
func EncodeObject(value interface{}) ([]byte, error) {
	if value == nil {
		return []byte("null"), nil
	}

	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Map && val.Type().Key().Kind() != reflect.String {
		// Non-string keys are rendered with %v
		result := make(map[string]interface{}, val.Len())
		for _, key := range val.MapKeys() {
			result[fmt.Sprintf("%v", key.Interface())] = val.MapIndex(key).Interface()
		}
		value = result
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return encoded, nil
}

// ParseObject decodes the textual form of a mapping: a JSON object, or a
// Python dict literal as written by str(dict) (single quotes, None, True,
// False). Arrays, scalars and malformed text are errors.
func ParseObject(text string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, errors.New("value is not an object")
	}

	var obj map[string]interface{}
	jsonErr := json.Unmarshal([]byte(trimmed), &obj)
	if jsonErr == nil {
		return obj, nil
	}

	v, err := parsePythonLiteral(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid object (json: %v; %v)", jsonErr, err)
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.New("value is not an object")
	}
	return obj, nil
}

// AsObject returns value as a mapping when it already is one
func AsObject(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case model.Record:
		return map[string]interface{}(v), true
	case map[string]string:
		obj := make(map[string]interface{}, len(v))
		for k, s := range v {
			obj[k] = s
		}
		return obj, true
	}
	return nil, false
}
