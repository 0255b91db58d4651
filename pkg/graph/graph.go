package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/network"
)

// MarshalNetwork converts a network to indented JSON bytes.
// Output is deterministic: the same network always yields the same bytes.
func MarshalNetwork(n *network.Network, meta *Meta) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(FromNetwork(n, meta), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteNetworkFile writes a network to a JSON file.
// The file is created with 0644 permissions.
func WriteNetworkFile(n *network.Network, meta *Meta, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return writeTo(FromNetwork(n, meta), f)
}

// WriteNetwork writes a network as JSON to an io.Writer.
func WriteNetwork(n *network.Network, meta *Meta, w io.Writer) error {
	return writeTo(FromNetwork(n, meta), w)
}

// ReadNetworkFile reads a JSON file and returns the decoded network and
// its metadata.
func ReadNetworkFile(path string) (*network.Network, *Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "network file %s", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return ReadNetwork(f)
}

// ReadNetwork decodes a JSON document from an io.Reader.
func ReadNetwork(r io.Reader) (*network.Network, *Meta, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, nil, err
	}
	n, err := ToNetwork(doc)
	if err != nil {
		return nil, nil, err
	}
	return n, doc.Meta, nil
}

// UnmarshalDocument decodes a document without converting it.
func UnmarshalDocument(data []byte) (Document, error) {
	return decode(bytes.NewReader(data))
}

func writeTo(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	return nil
}

func decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode network")
	}
	return doc, nil
}
