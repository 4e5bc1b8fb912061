package cmd

import (
	"fmt"
	"io"
	"os"

	lib "github.com/5amCurfew/singo/lib"
	"github.com/5amCurfew/singo/models"
	log "github.com/sirupsen/logrus"
)

// Check validates a tap's message stream read from r, optionally resolving
// stream selection from a catalog file, and flushes a record counter onto the
// metric side channel.
func Check(r io.Reader, catalogPath string) error {
	selected := map[string]bool{}
	if catalogPath != "" {
		catalog, err := lib.ReadCatalogFile(catalogPath)
		if err != nil {
			return err
		}
		for _, stream := range catalog.Streams {
			isSelected, err := lib.StreamIsSelected(stream)
			if err != nil {
				return err
			}
			selected[stream.Stream] = isSelected
		}
	}

	emitter := lib.NewEmitter(io.Discard, os.Stderr)
	counter := emitter.NewCounter("record_count", map[string]interface{}{})
	listener := lib.NewListener()

	err := listener.Listen(r, func(message models.Message) error {
		record, isRecord := message.(models.RecordMessage)
		if !isRecord {
			return nil
		}
		if catalogPath != "" && !selected[record.Stream] {
			return fmt.Errorf("record received for unselected stream %s", record.Stream)
		}
		counter.Increment(1)
		return nil
	})
	if err != nil {
		return err
	}

	if err := counter.Flush(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"records": listener.Records,
		"invalid": listener.Invalid,
	}).Info("message stream checked")

	if listener.Invalid > 0 {
		return fmt.Errorf("message stream contained %d invalid line(s)", listener.Invalid)
	}
	return nil
}
