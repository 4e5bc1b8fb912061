package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is one unit of the tap-to-target data channel: RECORD, SCHEMA or
// STATE. Every message serializes to exactly one JSON object on exactly one
// line, with "type" as the sole discriminator.
type Message interface {
	messageType() string
}

// RecordMessage carries one unit of extracted data. Record is an opaque JSON
// document conforming to the most recently emitted schema for the same
// stream.
type RecordMessage struct {
	Stream        string
	Record        interface{}
	TimeExtracted *time.Time
}

// SchemaMessage declares the shape of subsequent records for a stream.
type SchemaMessage struct {
	Stream             string
	Schema             interface{}
	KeyProperties      []string
	BookmarkProperties []string
}

// StateMessage carries an opaque checkpoint blob. Consumers only ever
// round-trip the value, never interpret it.
type StateMessage struct {
	Value interface{}
}

func (RecordMessage) messageType() string { return "RECORD" }
func (SchemaMessage) messageType() string { return "SCHEMA" }
func (StateMessage) messageType() string  { return "STATE" }

type recordWire struct {
	Type          string      `json:"type"`
	Stream        string      `json:"stream"`
	Record        interface{} `json:"record"`
	TimeExtracted *string     `json:"time_extracted,omitempty"`
}

type schemaWire struct {
	Type          string      `json:"type"`
	Stream        string      `json:"stream"`
	Schema        interface{} `json:"schema"`
	KeyProperties []string    `json:"key_properties"`
	// pointer-to-slice so an empty-but-present sequence still encodes as [];
	// omitempty alone would drop it
	BookmarkProperties *[]string `json:"bookmark_properties,omitempty"`
}

type stateWire struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// EncodeMessage returns the canonical single-line JSON encoding of a message.
// Unset optional fields are omitted entirely, never emitted as null, and
// time_extracted always carries an explicit timezone offset. The caller owns
// line framing; no trailing newline is appended.
func EncodeMessage(m Message) ([]byte, error) {
	var wire interface{}

	switch msg := m.(type) {
	case RecordMessage:
		w := recordWire{Type: "RECORD", Stream: msg.Stream, Record: msg.Record}
		if msg.TimeExtracted != nil {
			extracted := msg.TimeExtracted.Format(time.RFC3339Nano)
			w.TimeExtracted = &extracted
		}
		wire = w
	case SchemaMessage:
		keys := msg.KeyProperties
		if keys == nil {
			keys = []string{}
		}
		w := schemaWire{
			Type:          "SCHEMA",
			Stream:        msg.Stream,
			Schema:        msg.Schema,
			KeyProperties: keys,
		}
		if msg.BookmarkProperties != nil {
			w.BookmarkProperties = &msg.BookmarkProperties
		}
		wire = w
	case StateMessage:
		wire = stateWire{Type: "STATE", Value: msg.Value}
	default:
		return nil, fmt.Errorf("error encoding message: unsupported type %T", m)
	}

	encoded, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("error encoding %s message: %w", m.messageType(), err)
	}
	return encoded, nil
}

// DecodeMessage parses one line of JSON into a message. Unknown extra fields
// are ignored for forward compatibility, and JSON null is accepted as absence
// for optional fields, though a conforming encoder never produces it.
func DecodeMessage(line []byte) (Message, error) {
	if !json.Valid(line) {
		return nil, fmt.Errorf("error decoding message: %w", ErrMalformedJSON)
	}

	var envelope struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field == "" {
			return nil, fmt.Errorf("error decoding message: not a JSON object: %w", ErrWrongFieldKind)
		}
		return nil, fmt.Errorf("error decoding message: type: %w", ErrWrongFieldKind)
	}
	if envelope.Type == nil {
		return nil, fmt.Errorf("error decoding message: type: %w", ErrMissingRequiredField)
	}

	switch *envelope.Type {
	case "RECORD":
		return decodeRecord(line)
	case "SCHEMA":
		return decodeSchema(line)
	case "STATE":
		return decodeState(line)
	default:
		return nil, fmt.Errorf("error decoding message: %q: %w", *envelope.Type, ErrUnknownMessageType)
	}
}

func decodeRecord(line []byte) (Message, error) {
	var wire struct {
		Stream        *string         `json:"stream"`
		Record        json.RawMessage `json:"record"`
		TimeExtracted *string         `json:"time_extracted"`
	}
	if err := json.Unmarshal(line, &wire); err != nil {
		return nil, fieldKindError("RECORD", err)
	}
	if wire.Stream == nil {
		return nil, missingFieldError("RECORD", "stream")
	}
	if wire.Record == nil {
		return nil, missingFieldError("RECORD", "record")
	}

	message := RecordMessage{Stream: *wire.Stream}
	if err := json.Unmarshal(wire.Record, &message.Record); err != nil {
		return nil, fieldKindError("RECORD", err)
	}
	if wire.TimeExtracted != nil {
		// time.RFC3339 requires an explicit offset (or Z); naive timestamps
		// are not a valid encoding
		extracted, err := time.Parse(time.RFC3339, *wire.TimeExtracted)
		if err != nil {
			return nil, fmt.Errorf("error decoding RECORD message: time_extracted %q: %w", *wire.TimeExtracted, ErrWrongFieldKind)
		}
		message.TimeExtracted = &extracted
	}
	return message, nil
}

func decodeSchema(line []byte) (Message, error) {
	var wire struct {
		Stream             *string         `json:"stream"`
		Schema             json.RawMessage `json:"schema"`
		KeyProperties      []string        `json:"key_properties"`
		BookmarkProperties []string        `json:"bookmark_properties"`
	}
	if err := json.Unmarshal(line, &wire); err != nil {
		return nil, fieldKindError("SCHEMA", err)
	}
	if wire.Stream == nil {
		return nil, missingFieldError("SCHEMA", "stream")
	}
	if wire.Schema == nil {
		return nil, missingFieldError("SCHEMA", "schema")
	}
	if wire.KeyProperties == nil {
		return nil, missingFieldError("SCHEMA", "key_properties")
	}

	message := SchemaMessage{
		Stream:             *wire.Stream,
		KeyProperties:      wire.KeyProperties,
		BookmarkProperties: wire.BookmarkProperties,
	}
	if err := json.Unmarshal(wire.Schema, &message.Schema); err != nil {
		return nil, fieldKindError("SCHEMA", err)
	}
	return message, nil
}

func decodeState(line []byte) (Message, error) {
	var wire struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(line, &wire); err != nil {
		return nil, fieldKindError("STATE", err)
	}
	if wire.Value == nil {
		return nil, missingFieldError("STATE", "value")
	}

	message := StateMessage{}
	if err := json.Unmarshal(wire.Value, &message.Value); err != nil {
		return nil, fieldKindError("STATE", err)
	}
	return message, nil
}

func missingFieldError(variant, field string) error {
	return fmt.Errorf("error decoding %s message: %s: %w", variant, field, ErrMissingRequiredField)
}

func fieldKindError(variant string, err error) error {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		return fmt.Errorf("error decoding %s message: %s: %w", variant, typeErr.Field, ErrWrongFieldKind)
	}
	return fmt.Errorf("error decoding %s message: %w", variant, ErrMalformedJSON)
}
