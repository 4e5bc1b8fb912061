package lib

import (
	"strings"
	"testing"

	"github.com/5amCurfew/singo/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersSchemaLine = `{"type":"SCHEMA","stream":"users","schema":{"type":"object","properties":{"id":{"type":"integer"}},"required":["id"]},"key_properties":["id"]}`

func TestListenValidStream(t *testing.T) {
	input := strings.Join([]string{
		usersSchemaLine,
		`{"type":"RECORD","stream":"users","record":{"id":1}}`,
		`{"type":"RECORD","stream":"users","record":{"id":2}}`,
		`{"type":"STATE","value":{"bookmarks":{"users":{"id":2}}}}`,
	}, "\n")

	listener := NewListener()

	var seen []models.Message
	require.NoError(t, listener.Listen(strings.NewReader(input), func(m models.Message) error {
		seen = append(seen, m)
		return nil
	}))

	assert.Len(t, seen, 4)
	assert.Equal(t, 2, listener.Records)
	assert.Equal(t, 0, listener.Invalid)

	state, ok := listener.State()
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"bookmarks": map[string]interface{}{"users": map[string]interface{}{"id": float64(2)}}}, state)
}

func TestListenSkipsInvalidLines(t *testing.T) {
	input := strings.Join([]string{
		usersSchemaLine,
		`not json at all`,
		`{"type":"RECORD","stream":"users","record":{"id":"not-an-integer"}}`,
		`{"type":"RECORD","stream":"users","record":{"id":3}}`,
		``,
	}, "\n")

	listener := NewListener()
	require.NoError(t, listener.Listen(strings.NewReader(input), nil))

	assert.Equal(t, 2, listener.Records)
	assert.Equal(t, 2, listener.Invalid)

	_, ok := listener.State()
	assert.False(t, ok)
}

func TestListenRecordBeforeSchemaIsInvalid(t *testing.T) {
	input := `{"type":"RECORD","stream":"users","record":{"id":1}}`

	listener := NewListener()
	require.NoError(t, listener.Listen(strings.NewReader(input), nil))

	assert.Equal(t, 1, listener.Records)
	assert.Equal(t, 1, listener.Invalid)
}

func TestListenHandlerErrorStops(t *testing.T) {
	input := strings.Join([]string{
		usersSchemaLine,
		`{"type":"RECORD","stream":"users","record":{"id":1}}`,
		`{"type":"RECORD","stream":"users","record":{"id":2}}`,
	}, "\n")

	listener := NewListener()
	err := listener.Listen(strings.NewReader(input), func(m models.Message) error {
		if _, isRecord := m.(models.RecordMessage); isRecord {
			return assert.AnError
		}
		return nil
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, listener.Records)
}
