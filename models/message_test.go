package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateSerialization(t *testing.T) {
	encoded, err := EncodeMessage(StateMessage{Value: map[string]interface{}{"key": "value"}})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"STATE","value":{"key":"value"}}`, string(encoded))
}

func TestRecordDecodeWithoutTimeExtracted(t *testing.T) {
	message, err := DecodeMessage([]byte(`{"type":"RECORD","stream":"users","record":{"id":1}}`))
	require.NoError(t, err)

	record, ok := message.(RecordMessage)
	require.True(t, ok)
	assert.Equal(t, "users", record.Stream)
	assert.Nil(t, record.TimeExtracted)

	encoded, err := EncodeMessage(record)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "time_extracted")
}

func TestSchemaDecodeWithoutBookmarkProperties(t *testing.T) {
	message, err := DecodeMessage([]byte(`{"type":"SCHEMA","stream":"users","schema":{},"key_properties":["id"]}`))
	require.NoError(t, err)

	schema, ok := message.(SchemaMessage)
	require.True(t, ok)
	assert.Equal(t, "users", schema.Stream)
	assert.Equal(t, []string{"id"}, schema.KeyProperties)
	assert.Nil(t, schema.BookmarkProperties)

	encoded, err := EncodeMessage(schema)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "bookmark_properties")
}

func TestSchemaEmptyBookmarkPropertiesRoundTrip(t *testing.T) {
	message, err := DecodeMessage([]byte(`{"type":"SCHEMA","stream":"users","schema":{},"key_properties":[],"bookmark_properties":[]}`))
	require.NoError(t, err)

	schema, ok := message.(SchemaMessage)
	require.True(t, ok)
	require.NotNil(t, schema.BookmarkProperties)
	assert.Empty(t, schema.BookmarkProperties)

	// an empty-but-present sequence stays present on re-encode
	encoded, err := EncodeMessage(schema)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"bookmark_properties":[]`)

	decoded, err := DecodeMessage(encoded)
	require.NoError(t, err)
	assert.Equal(t, schema, decoded)
}

func TestRecordRoundTripWithTimeExtracted(t *testing.T) {
	extracted := time.Date(2023, 6, 1, 12, 30, 0, 500000000, time.UTC)
	original := RecordMessage{
		Stream:        "users",
		Record:        map[string]interface{}{"id": float64(1)},
		TimeExtracted: &extracted,
	}

	encoded, err := EncodeMessage(original)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"time_extracted":"2023-06-01T12:30:00.5Z"`)

	decoded, err := DecodeMessage(encoded)
	require.NoError(t, err)

	record, ok := decoded.(RecordMessage)
	require.True(t, ok)
	assert.Equal(t, original.Stream, record.Stream)
	assert.Equal(t, original.Record, record.Record)
	require.NotNil(t, record.TimeExtracted)
	assert.True(t, record.TimeExtracted.Equal(extracted))
}

func TestSchemaRoundTrip(t *testing.T) {
	original := SchemaMessage{
		Stream:             "orders",
		Schema:             map[string]interface{}{"type": "object"},
		KeyProperties:      []string{"id"},
		BookmarkProperties: []string{"updated_at"},
	}

	encoded, err := EncodeMessage(original)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(encoded), "\n"))

	decoded, err := DecodeMessage(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodeNeverEmitsNullForOptionalFields(t *testing.T) {
	encoded, err := EncodeMessage(RecordMessage{Stream: "users", Record: map[string]interface{}{}})
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "null")

	encoded, err = EncodeMessage(SchemaMessage{Stream: "users", Schema: map[string]interface{}{}})
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "bookmark_properties")
	assert.Contains(t, string(encoded), `"key_properties":[]`)
}

func TestDecodeUnknownMessageType(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":"ACTIVATE_VERSION","stream":"users"}`))
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestDecodeMalformedJson(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":"RECORD",`))
	assert.ErrorIs(t, err, ErrMalformedJSON)
}

func TestDecodeNonObjectLine(t *testing.T) {
	_, err := DecodeMessage([]byte(`[1]`))
	assert.ErrorIs(t, err, ErrWrongFieldKind)
	assert.Contains(t, err.Error(), "not a JSON object")

	_, err = DecodeMessage([]byte(`"RECORD"`))
	assert.ErrorIs(t, err, ErrWrongFieldKind)
	assert.Contains(t, err.Error(), "not a JSON object")
}

func TestDecodeMissingType(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"stream":"users","record":{}}`))
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestDecodeMissingRequiredFields(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":"RECORD","record":{}}`))
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	_, err = DecodeMessage([]byte(`{"type":"RECORD","stream":"users"}`))
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	_, err = DecodeMessage([]byte(`{"type":"SCHEMA","stream":"users","schema":{}}`))
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	_, err = DecodeMessage([]byte(`{"type":"STATE"}`))
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestDecodeWrongFieldKind(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":"RECORD","stream":1,"record":{}}`))
	assert.ErrorIs(t, err, ErrWrongFieldKind)

	_, err = DecodeMessage([]byte(`{"type":"SCHEMA","stream":"users","schema":{},"key_properties":"id"}`))
	assert.ErrorIs(t, err, ErrWrongFieldKind)

	_, err = DecodeMessage([]byte(`{"type":"SCHEMA","stream":"users","schema":{},"key_properties":["id",2]}`))
	assert.ErrorIs(t, err, ErrWrongFieldKind)
}

func TestDecodeRejectsNaiveTimestamp(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":"RECORD","stream":"users","record":{},"time_extracted":"2023-06-01T12:30:00"}`))
	assert.ErrorIs(t, err, ErrWrongFieldKind)
}

func TestDecodeAcceptsNullAsAbsentForOptionalFields(t *testing.T) {
	message, err := DecodeMessage([]byte(`{"type":"RECORD","stream":"users","record":{},"time_extracted":null}`))
	require.NoError(t, err)
	assert.Nil(t, message.(RecordMessage).TimeExtracted)

	message, err = DecodeMessage([]byte(`{"type":"SCHEMA","stream":"users","schema":{},"key_properties":[],"bookmark_properties":null}`))
	require.NoError(t, err)
	assert.Nil(t, message.(SchemaMessage).BookmarkProperties)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	message, err := DecodeMessage([]byte(`{"type":"STATE","value":{"a":1},"version":7,"extra":"ignored"}`))
	require.NoError(t, err)

	state, ok := message.(StateMessage)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, state.Value)
}
