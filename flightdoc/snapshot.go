package flightdoc

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/vmihailenco/msgpack/v5"
)

// WriteSnapshot stores doc as flate-compressed msgpack.
func WriteSnapshot(w io.Writer, doc *Document) error {
	if doc == nil {
		doc = &Document{}
	}
	fw, err := flate.NewWriter(w, flate.BestSpeed)
	if err != nil {
		return fmt.Errorf("flate writer: %w", err)
	}
	if err := msgpack.NewEncoder(fw).Encode(doc); err != nil {
		fw.Close()
		return fmt.Errorf("msgpack encode: %w", err)
	}
	return fw.Close()
}

// ReadSnapshot loads a Document written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Document, error) {
	fr := flate.NewReader(r)
	defer fr.Close()

	var doc Document
	if err := msgpack.NewDecoder(fr).Decode(&doc); err != nil {
		return nil, fmt.Errorf("msgpack decode: %w", err)
	}
	return &doc, nil
}
