package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MetricType classifies an out-of-band telemetry data-point.
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeTimer   MetricType = "timer"
)

// MetricValue is the untagged numeric union carried in a metric: a bare JSON
// number on the wire. The integer/float class of the source value survives a
// round trip, so a counter increment of 42 never comes back as 42.0.
type MetricValue interface {
	metricValue()
}

type IntegerValue int64

type FloatValue float64

func (IntegerValue) metricValue() {}
func (FloatValue) metricValue()   {}

func (v IntegerValue) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(v), 10), nil
}

// MarshalJSON keeps whole-numbered floats recognizable as floats by always
// emitting a fractional part or exponent.
func (v FloatValue) MarshalJSON() ([]byte, error) {
	literal := strconv.FormatFloat(float64(v), 'g', -1, 64)
	if !strings.ContainsAny(literal, ".eE") {
		literal += ".0"
	}
	return []byte(literal), nil
}

// Metric is one telemetry data-point, carried over the log side channel
// rather than the stdout data stream. The metric name and tag keys should use
// only letters, digits, underscores and dashes; this is a convention and is
// not enforced.
type Metric struct {
	Type   MetricType             `json:"type"`
	Metric string                 `json:"metric"`
	Value  MetricValue            `json:"value"`
	Tags   map[string]interface{} `json:"tags"`
}

// EncodeMetric returns the bare JSON object for a metric. Framing it into the
// "INFO METRIC: <json>" side-channel line is the caller's concern.
func EncodeMetric(m Metric) ([]byte, error) {
	if m.Tags == nil {
		m.Tags = map[string]interface{}{}
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("error encoding metric: %w", err)
	}
	return encoded, nil
}

// DecodeMetric parses a bare metric JSON object. A number literal with no
// decimal point or exponent decodes as IntegerValue, otherwise FloatValue.
func DecodeMetric(data []byte) (Metric, error) {
	var m Metric

	if !json.Valid(data) {
		return m, fmt.Errorf("error decoding metric: %w", ErrMalformedJSON)
	}

	var wire struct {
		Type   *string         `json:"type"`
		Metric *string         `json:"metric"`
		Value  json.RawMessage `json:"value"`
		Tags   json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return m, fmt.Errorf("error decoding metric: %s: %w", typeErr.Field, ErrWrongFieldKind)
		}
		return m, fmt.Errorf("error decoding metric: %w", ErrMalformedJSON)
	}

	if wire.Type == nil {
		return m, fmt.Errorf("error decoding metric: type: %w", ErrMissingRequiredField)
	}
	switch MetricType(*wire.Type) {
	case MetricTypeCounter, MetricTypeTimer:
	default:
		return m, fmt.Errorf("error decoding metric: %q: %w", *wire.Type, ErrUnknownMetricType)
	}
	if wire.Metric == nil {
		return m, fmt.Errorf("error decoding metric: metric: %w", ErrMissingRequiredField)
	}
	if wire.Value == nil {
		return m, fmt.Errorf("error decoding metric: value: %w", ErrMissingRequiredField)
	}
	if wire.Tags == nil {
		return m, fmt.Errorf("error decoding metric: tags: %w", ErrMissingRequiredField)
	}

	var number json.Number
	if err := json.Unmarshal(wire.Value, &number); err != nil {
		return m, fmt.Errorf("error decoding metric: value: %w", ErrWrongFieldKind)
	}
	value, err := classifyNumber(number)
	if err != nil {
		return m, err
	}

	var tags map[string]interface{}
	if err := json.Unmarshal(wire.Tags, &tags); err != nil {
		return m, fmt.Errorf("error decoding metric: tags: %w", ErrWrongFieldKind)
	}

	m.Type = MetricType(*wire.Type)
	m.Metric = *wire.Metric
	m.Value = value
	m.Tags = tags
	return m, nil
}

func classifyNumber(number json.Number) (MetricValue, error) {
	literal := number.String()
	if strings.ContainsAny(literal, ".eE") {
		f, err := number.Float64()
		if err != nil {
			return nil, fmt.Errorf("error decoding metric: value %q: %w", literal, ErrWrongFieldKind)
		}
		return FloatValue(f), nil
	}
	i, err := number.Int64()
	if err != nil {
		return nil, fmt.Errorf("error decoding metric: value %q: %w", literal, ErrWrongFieldKind)
	}
	return IntegerValue(i), nil
}
