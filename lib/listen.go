package lib

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/5amCurfew/singo/models"
	log "github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

// Listener consumes a newline-delimited message stream, validating each
// record against the most recent schema seen for its stream and tracking the
// latest state checkpoint.
type Listener struct {
	schemas map[string]*gojsonschema.Schema
	state   interface{}
	seen    bool

	Records int
	Invalid int
}

func NewListener() *Listener {
	return &Listener{schemas: map[string]*gojsonschema.Schema{}}
}

// Listen reads messages until EOF. handle, when non-nil, is invoked for every
// successfully decoded message and an error from it stops the listener.
// Undecodable lines and schema violations are logged, counted and skipped -
// they are never fatal here.
func (l *Listener) Listen(r io.Reader, handle func(models.Message) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		message, err := models.DecodeMessage(line)
		if err != nil {
			l.Invalid++
			log.WithFields(log.Fields{"error": err}).Warn("skipping undecodable line")
			continue
		}

		if err := l.apply(message); err != nil {
			l.Invalid++
			log.WithFields(log.Fields{"error": err}).Warn("skipping invalid message")
			continue
		}

		if handle != nil {
			if err := handle(message); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading message stream: %w", err)
	}
	return nil
}

func (l *Listener) apply(message models.Message) error {
	switch m := message.(type) {
	case models.SchemaMessage:
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(m.Schema))
		if err != nil {
			return fmt.Errorf("error compiling schema for stream %s: %w", m.Stream, err)
		}
		l.schemas[m.Stream] = schema
	case models.RecordMessage:
		l.Records++
		schema, known := l.schemas[m.Stream]
		if !known {
			return fmt.Errorf("record received before any schema for stream %s", m.Stream)
		}
		result, err := schema.Validate(gojsonschema.NewGoLoader(m.Record))
		if err != nil {
			return fmt.Errorf("error validating record for stream %s: %w", m.Stream, err)
		}
		if !result.Valid() {
			return fmt.Errorf("record for stream %s violates schema: %s", m.Stream, result.Errors())
		}
	case models.StateMessage:
		l.state = m.Value
		l.seen = true
	}
	return nil
}

// State returns the latest checkpoint seen, if any. Its contents are opaque
// and only ever round-tripped.
func (l *Listener) State() (interface{}, bool) {
	return l.state, l.seen
}
