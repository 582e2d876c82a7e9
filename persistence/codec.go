package persistence

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Encode serializes a snapshot to deflate-compressed JSON.
func Encode(snap *Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, eris.Wrap(err, "encoding snapshot")
	}

	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, eris.Wrap(err, "creating deflate writer")
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, eris.Wrap(err, "compressing snapshot")
	}
	if err := zw.Close(); err != nil {
		return nil, eris.Wrap(err, "finishing compression")
	}
	return buf.Bytes(), nil
}

// Decode parses a deflate-compressed JSON snapshot blob.
func Decode(blob []byte) (*Snapshot, error) {
	zr := flate.NewReader(bytes.NewReader(blob))
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, eris.Wrap(err, "decompressing snapshot")
	}

	snap := &Snapshot{}
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, eris.Wrap(err, "parsing snapshot")
	}
	return snap, nil
}
