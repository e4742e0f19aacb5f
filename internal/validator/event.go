package validator

import (
	"encoding/json"
	"fmt"

	"github.com/telhawk-systems/logrelay/internal/models"
)

// ValidationError kinds.
const (
	KindMalformedJSON = "malformed_json"
	KindWrongShape    = "wrong_shape"
	KindMissingField  = "missing_field"
)

// ValidationError describes why a payload was rejected. Field is set only
// for missing_field errors.
type ValidationError struct {
	Kind  string
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case KindWrongShape:
		return "payload must be a JSON object"
	default:
		return "malformed JSON"
	}
}

// Validate decodes raw as JSON and enforces the presence of every required
// top-level key. The check is structural only: value types are accepted as
// sent, and the decoded object is carried through to the sink unchanged.
func Validate(raw []byte) (*models.Event, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ValidationError{Kind: KindMalformedJSON}
	}

	fields, ok := decoded.(map[string]any)
	if !ok {
		return nil, &ValidationError{Kind: KindWrongShape}
	}

	for _, name := range models.RequiredFields {
		if _, present := fields[name]; !present {
			return nil, &ValidationError{Kind: KindMissingField, Field: name}
		}
	}

	return &models.Event{Fields: fields}, nil
}
