package cmd

import (
	lib "github.com/5amCurfew/singo/lib"
	log "github.com/sirupsen/logrus"
)

// Catalog parses a catalog file and logs each discovered stream with its
// resolved selection state.
func Catalog(path string) error {
	catalog, err := lib.ReadCatalogFile(path)
	if err != nil {
		return err
	}

	for _, stream := range catalog.Streams {
		isSelected, err := lib.StreamIsSelected(stream)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"stream":        stream.Stream,
			"tap_stream_id": stream.TapStreamID,
			"selected":      isSelected,
		}).Info("stream discovered")
	}

	log.WithFields(log.Fields{"streams": len(catalog.Streams)}).Info("catalog parsed")
	return nil
}
