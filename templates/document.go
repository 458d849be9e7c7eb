package templates

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// documentFields unmarshals one nesting level of a serialized template and
// confirms all $required keys are present
func documentFields(doc []byte, required ...string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	for _, key := range required {
		if _, ok := fields[key]; !ok {
			return nil, errors.Wrapf(ErrInvalidTemplateDocument, "missing key %q", key)
		}
	}

	return fields, nil
}

// snowflakeField reads a discord id that may be serialized as a string or,
// in documents written by older exporters, as a number
func snowflakeField(raw json.RawMessage) (string, error) {
	if raw == nil || string(raw) == "null" {
		return "", nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return "", errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	id, err := strconv.ParseInt(asNumber.String(), 10, 64)
	if err != nil {
		return "", errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	return strconv.FormatInt(id, 10), nil
}
