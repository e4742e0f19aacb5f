package validator

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/logrelay/internal/models"
)

func validEventFields() map[string]any {
	return map[string]any{
		"schema_version": 1,
		"source":         gofakeit.AppName(),
		"timestamp":      "2026-09-01T12:00:00Z",
		"level":          "ERROR",
		"logger":         "app.worker",
		"message":        gofakeit.Sentence(6),
		"exc_info":       nil,
		"extra": map[string]any{
			"request_id": gofakeit.UUID(),
			"host":       gofakeit.DomainName(),
		},
	}
}

func TestValidate_ValidEvent(t *testing.T) {
	raw, err := json.Marshal(validEventFields())
	require.NoError(t, err)

	event, err := Validate(raw)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "ERROR", event.Fields["level"])
	assert.NotEmpty(t, event.RequestID())
}

func TestValidate_MissingFieldNamesTheField(t *testing.T) {
	for _, field := range models.RequiredFields {
		t.Run(field, func(t *testing.T) {
			fields := validEventFields()
			delete(fields, field)
			raw, err := json.Marshal(fields)
			require.NoError(t, err)

			_, err = Validate(raw)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, KindMissingField, verr.Kind)
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("{"),
		[]byte(`{"source": }`),
		[]byte("not json at all"),
		{0xff, 0xfe, 0x00},
	}

	for _, raw := range inputs {
		_, err := Validate(raw)
		require.Error(t, err, "input %q", raw)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, KindMalformedJSON, verr.Kind)
	}
}

func TestValidate_NonObjectShapes(t *testing.T) {
	inputs := [][]byte{
		[]byte(`[]`),
		[]byte(`[{"schema_version":1}]`),
		[]byte(`"a string"`),
		[]byte(`42`),
		[]byte(`null`),
		[]byte(`true`),
	}

	for _, raw := range inputs {
		_, err := Validate(raw)
		require.Error(t, err, "input %s", raw)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, KindWrongShape, verr.Kind, "input %s", raw)
	}
}

func TestValidate_PresenceOnlyContract(t *testing.T) {
	// Value types are not enforced: a string schema_version, a numeric
	// message and a null extra all pass the structural check.
	raw := []byte(`{
		"schema_version": "one",
		"source": 7,
		"timestamp": false,
		"level": null,
		"logger": {},
		"message": 3.14,
		"extra": null
	}`)

	event, err := Validate(raw)
	require.NoError(t, err)
	assert.Nil(t, event.Extra())
	assert.Empty(t, event.RequestID())
}

func TestValidate_ExtraPassesThroughVerbatim(t *testing.T) {
	fields := validEventFields()
	fields["extra"] = map[string]any{
		"request_id": "abc-123",
		"nested":     map[string]any{"depth": 2.0, "tags": []any{"a", "b"}},
	}
	raw, err := json.Marshal(fields)
	require.NoError(t, err)

	event, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", event.RequestID())
	assert.Equal(t, map[string]any{"depth": 2.0, "tags": []any{"a", "b"}}, event.Extra()["nested"])
}

func TestValidate_GeneratedEvents(t *testing.T) {
	gofakeit.Seed(11)

	for i := 0; i < 50; i++ {
		fields := validEventFields()
		// Random open-schema extras must never break validation.
		extra := fields["extra"].(map[string]any)
		for j := 0; j < gofakeit.Number(0, 8); j++ {
			extra[fmt.Sprintf("field_%d", j)] = gofakeit.Word()
		}
		raw, err := json.Marshal(fields)
		require.NoError(t, err)

		_, err = Validate(raw)
		require.NoError(t, err)
	}
}
