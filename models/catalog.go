package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Stream describes one discoverable source stream. Stream is the display,
// target-facing name; TapStreamID is the source-facing unique identifier. The
// two may differ when multiple source streams share a display name.
type Stream struct {
	Stream      string
	TapStreamID string
	Schema      interface{}
	TableName   *string
	Metadata    []Metadata
}

func (s Stream) MarshalJSON() ([]byte, error) {
	wire := struct {
		Stream      string      `json:"stream"`
		TapStreamID string      `json:"tap_stream_id"`
		Schema      interface{} `json:"schema"`
		TableName   *string     `json:"table_name,omitempty"`
		// pointer-to-slice so an empty-but-present metadata array still
		// encodes as []; omitempty alone would drop it
		Metadata *[]Metadata `json:"metadata,omitempty"`
	}{s.Stream, s.TapStreamID, s.Schema, s.TableName, nil}
	if s.Metadata != nil {
		wire.Metadata = &s.Metadata
	}
	return json.Marshal(wire)
}

func (s *Stream) UnmarshalJSON(data []byte) error {
	var wire struct {
		Stream      *string         `json:"stream"`
		TapStreamID *string         `json:"tap_stream_id"`
		Schema      json.RawMessage `json:"schema"`
		TableName   *string         `json:"table_name"`
		Metadata    []Metadata      `json:"metadata"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		if errors.Is(err, ErrSchemaViolation) || errors.Is(err, ErrMissingRequiredField) {
			return err
		}
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return fmt.Errorf("error decoding stream: %s: %w", typeErr.Field, ErrSchemaViolation)
		}
		return err
	}
	if wire.Stream == nil {
		return fmt.Errorf("error decoding stream: stream: %w", ErrMissingRequiredField)
	}
	if wire.TapStreamID == nil {
		return fmt.Errorf("error decoding stream: tap_stream_id: %w", ErrMissingRequiredField)
	}
	if wire.Schema == nil {
		return fmt.Errorf("error decoding stream: schema: %w", ErrMissingRequiredField)
	}

	s.Stream = *wire.Stream
	s.TapStreamID = *wire.TapStreamID
	s.TableName = wire.TableName
	s.Metadata = wire.Metadata
	return json.Unmarshal(wire.Schema, &s.Schema)
}

// StreamEntry returns the metadata object that applies to the whole stream
// (empty breadcrumb), or nil when none exists.
func (s Stream) StreamEntry() map[string]interface{} {
	for _, m := range s.Metadata {
		if len(m.Breadcrumb) == 0 {
			return m.Metadata
		}
	}
	return nil
}

// PropertyEntry returns the metadata object for a named property (breadcrumb
// ["properties", name]), or nil when none exists.
func (s Stream) PropertyEntry(name string) map[string]interface{} {
	for _, m := range s.Metadata {
		if len(m.Breadcrumb) == 2 && m.Breadcrumb[0] == "properties" && m.Breadcrumb[1] == name {
			return m.Metadata
		}
	}
	return nil
}

// Catalog is the full document persisted to and read from a catalog file,
// constructed once per discovery cycle and rewritten wholesale.
type Catalog struct {
	Streams []Stream `json:"streams"`
}

// EncodeCatalog renders the whole catalog document.
func EncodeCatalog(c Catalog) ([]byte, error) {
	if c.Streams == nil {
		c.Streams = []Stream{}
	}
	encoded, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("error encoding catalog: %w", err)
	}
	return encoded, nil
}

// DecodeCatalog parses a whole catalog document.
func DecodeCatalog(data []byte) (Catalog, error) {
	var c Catalog

	if !json.Valid(data) {
		return c, fmt.Errorf("error decoding catalog: %w", ErrMalformedJSON)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		if errors.Is(err, ErrSchemaViolation) || errors.Is(err, ErrMissingRequiredField) {
			return c, fmt.Errorf("error decoding catalog: %w", err)
		}
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return c, fmt.Errorf("error decoding catalog: %s: %w", typeErr.Field, ErrSchemaViolation)
		}
		return c, fmt.Errorf("error decoding catalog: %w", ErrSchemaViolation)
	}
	return c, nil
}
