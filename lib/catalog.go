package lib

import (
	"fmt"
	"os"

	"github.com/5amCurfew/singo/models"
	util "github.com/5amCurfew/singo/util"
)

// ReadCatalogFile parses a catalog document from disk.
func ReadCatalogFile(path string) (models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("error reading catalog file: %w", err)
	}

	catalog, err := models.DecodeCatalog(data)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("error parsing catalog file %s: %w", path, err)
	}
	return catalog, nil
}

// WriteCatalogFile persists a catalog document to disk wholesale.
func WriteCatalogFile(path string, catalog models.Catalog) error {
	if catalog.Streams == nil {
		catalog.Streams = []models.Stream{}
	}
	return util.WriteJSON(path, catalog)
}

// StreamIsSelected resolves the selection state of a stream from its
// stream-level metadata entry: "unsupported" streams are never selected,
// "automatic" streams always are, and otherwise an explicit "selected" wins
// over "selected-by-default". A stream with no stream-level metadata entry is
// selected, since nothing marks it otherwise.
func StreamIsSelected(stream models.Stream) (bool, error) {
	entry := stream.StreamEntry()
	if entry == nil {
		return true, nil
	}

	sm, err := models.ParseStreamMetadata(entry)
	if err != nil {
		return false, fmt.Errorf("error resolving selection for stream %s: %w", stream.TapStreamID, err)
	}

	switch sm.Inclusion {
	case models.IncludeUnsupported:
		return false, nil
	case models.IncludeAutomatic:
		return true, nil
	}
	if sm.Selected != nil {
		return *sm.Selected, nil
	}
	if sm.SelectedByDefault != nil {
		return *sm.SelectedByDefault, nil
	}
	return false, nil
}
