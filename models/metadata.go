package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Include states whether a stream or property is offered for selection:
// offered ("available"), always included ("automatic") or never offered
// ("unsupported").
type Include string

const (
	IncludeAvailable   Include = "available"
	IncludeAutomatic   Include = "automatic"
	IncludeUnsupported Include = "unsupported"
)

func (i *Include) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	switch Include(token) {
	case IncludeAvailable, IncludeAutomatic, IncludeUnsupported:
		*i = Include(token)
		return nil
	}
	return fmt.Errorf("error decoding inclusion %q: %w", token, ErrSchemaViolation)
}

// ReplicationMethod is the strategy for synchronising a stream's data: full
// reload, incremental by key, or change-log based.
type ReplicationMethod string

const (
	ReplicationFullTable   ReplicationMethod = "FULL_TABLE"
	ReplicationIncremental ReplicationMethod = "INCREMENTAL"
	ReplicationLogBased    ReplicationMethod = "LOG_BASED"
)

func (r *ReplicationMethod) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	switch ReplicationMethod(token) {
	case ReplicationFullTable, ReplicationIncremental, ReplicationLogBased:
		*r = ReplicationMethod(token)
		return nil
	}
	return fmt.Errorf("error decoding replication method %q: %w", token, ErrSchemaViolation)
}

// Metadata attaches a metadata object to the whole stream (empty breadcrumb)
// or to one of its properties (breadcrumb ["properties", <name>]). The
// metadata object is an open map at the wire level: it can contain any keys,
// with the reserved vocabulary described by StreamMetadata.
type Metadata struct {
	Metadata   map[string]interface{} `json:"metadata"`
	Breadcrumb []string               `json:"breadcrumb"`
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	wire := struct {
		Metadata   map[string]interface{} `json:"metadata"`
		Breadcrumb []string               `json:"breadcrumb"`
	}{m.Metadata, m.Breadcrumb}
	if wire.Metadata == nil {
		wire.Metadata = map[string]interface{}{}
	}
	if wire.Breadcrumb == nil {
		wire.Breadcrumb = []string{}
	}
	return json.Marshal(wire)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var wire struct {
		Metadata   json.RawMessage `json:"metadata"`
		Breadcrumb *[]interface{}  `json:"breadcrumb"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return fmt.Errorf("error decoding metadata: %s: %w", typeErr.Field, ErrSchemaViolation)
		}
		return err
	}
	if wire.Metadata == nil {
		return fmt.Errorf("error decoding metadata: metadata: %w", ErrMissingRequiredField)
	}
	if wire.Breadcrumb == nil {
		return fmt.Errorf("error decoding metadata: breadcrumb: %w", ErrMissingRequiredField)
	}

	var object map[string]interface{}
	if err := json.Unmarshal(wire.Metadata, &object); err != nil {
		return fmt.Errorf("error decoding metadata: metadata: %w", ErrSchemaViolation)
	}

	breadcrumb := make([]string, 0, len(*wire.Breadcrumb))
	for _, part := range *wire.Breadcrumb {
		s, ok := part.(string)
		if !ok {
			return fmt.Errorf("error decoding metadata: breadcrumb element %v: %w", part, ErrSchemaViolation)
		}
		breadcrumb = append(breadcrumb, s)
	}

	m.Metadata = object
	m.Breadcrumb = breadcrumb
	return nil
}

// StreamMetadata is the reserved metadata vocabulary, merged across the two
// conventions the ecosystem uses without distinguishing them on the wire:
//
//   - supplied externally, never inferred by the tap: Selected,
//     ReplicationMethod, ReplicationKey, ViewKeyProperties
//   - inferred by the tap from the source system: Inclusion,
//     SelectedByDefault, ValidReplicationKeys, ForcedReplicationMethod,
//     TableKeyProperties, SchemaName, IsView, RowCount, DatabaseName,
//     SQLDatatype
//
// Every field is optional and omitted from the wire map when unset.
type StreamMetadata struct {
	Selected          *bool              `json:"selected,omitempty"`
	ReplicationMethod *ReplicationMethod `json:"replication-method,omitempty"`
	ReplicationKey    *string            `json:"replication-key,omitempty"`
	ViewKeyProperties []string           `json:"view-key-properties,omitempty"`

	Inclusion               Include            `json:"inclusion,omitempty"`
	SelectedByDefault       *bool              `json:"selected-by-default,omitempty"`
	ValidReplicationKeys    []string           `json:"valid-replication-keys,omitempty"`
	ForcedReplicationMethod *ReplicationMethod `json:"forced-replication-method,omitempty"`
	TableKeyProperties      []string           `json:"table-key-properties,omitempty"`
	SchemaName              *string            `json:"schema-name,omitempty"`
	IsView                  *bool              `json:"is-view,omitempty"`
	RowCount                *uint64            `json:"row-count,omitempty"`
	DatabaseName            *string            `json:"database-name,omitempty"`
	SQLDatatype             *string            `json:"sql-datatype,omitempty"`
}

// MarshalJSON omits unset optional fields but keeps empty-but-present
// sequences, which plain omitempty would drop alongside nil ones.
func (sm StreamMetadata) MarshalJSON() ([]byte, error) {
	wire := struct {
		Selected          *bool              `json:"selected,omitempty"`
		ReplicationMethod *ReplicationMethod `json:"replication-method,omitempty"`
		ReplicationKey    *string            `json:"replication-key,omitempty"`
		ViewKeyProperties *[]string          `json:"view-key-properties,omitempty"`

		Inclusion               Include            `json:"inclusion,omitempty"`
		SelectedByDefault       *bool              `json:"selected-by-default,omitempty"`
		ValidReplicationKeys    *[]string          `json:"valid-replication-keys,omitempty"`
		ForcedReplicationMethod *ReplicationMethod `json:"forced-replication-method,omitempty"`
		TableKeyProperties      *[]string          `json:"table-key-properties,omitempty"`
		SchemaName              *string            `json:"schema-name,omitempty"`
		IsView                  *bool              `json:"is-view,omitempty"`
		RowCount                *uint64            `json:"row-count,omitempty"`
		DatabaseName            *string            `json:"database-name,omitempty"`
		SQLDatatype             *string            `json:"sql-datatype,omitempty"`
	}{
		Selected:                sm.Selected,
		ReplicationMethod:       sm.ReplicationMethod,
		ReplicationKey:          sm.ReplicationKey,
		Inclusion:               sm.Inclusion,
		SelectedByDefault:       sm.SelectedByDefault,
		ForcedReplicationMethod: sm.ForcedReplicationMethod,
		SchemaName:              sm.SchemaName,
		IsView:                  sm.IsView,
		RowCount:                sm.RowCount,
		DatabaseName:            sm.DatabaseName,
		SQLDatatype:             sm.SQLDatatype,
	}
	if sm.ViewKeyProperties != nil {
		wire.ViewKeyProperties = &sm.ViewKeyProperties
	}
	if sm.ValidReplicationKeys != nil {
		wire.ValidReplicationKeys = &sm.ValidReplicationKeys
	}
	if sm.TableKeyProperties != nil {
		wire.TableKeyProperties = &sm.TableKeyProperties
	}
	return json.Marshal(wire)
}

// ParseStreamMetadata interprets an open metadata map as the reserved
// vocabulary. Unknown keys are ignored. A missing "inclusion" key defaults to
// IncludeAvailable; the default is applied here, at interpretation time, and
// is never substituted back into the open map itself.
func ParseStreamMetadata(raw map[string]interface{}) (StreamMetadata, error) {
	var sm StreamMetadata

	data, err := json.Marshal(raw)
	if err != nil {
		return sm, fmt.Errorf("error parsing stream metadata: %w", err)
	}
	if err := json.Unmarshal(data, &sm); err != nil {
		if errors.Is(err, ErrSchemaViolation) {
			return sm, fmt.Errorf("error parsing stream metadata: %w", err)
		}
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return sm, fmt.Errorf("error parsing stream metadata: %s: %w", typeErr.Field, ErrSchemaViolation)
		}
		return sm, fmt.Errorf("error parsing stream metadata: %w", ErrSchemaViolation)
	}

	// null is accepted as absence, though a conforming encoder never emits it
	if value, present := raw["inclusion"]; !present || value == nil {
		sm.Inclusion = IncludeAvailable
	}
	return sm, nil
}

// Map renders the typed view back into an open metadata map, omitting unset
// optional fields.
func (sm StreamMetadata) Map() (map[string]interface{}, error) {
	data, err := json.Marshal(sm)
	if err != nil {
		return nil, fmt.Errorf("error rendering stream metadata: %w", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error rendering stream metadata: %w", err)
	}
	return raw, nil
}
