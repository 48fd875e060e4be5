package store

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/vmihailenco/msgpack/v5"
)

// Binary envelope constants: a fixed magic, a version, a flags word, and a
// checksum guarding the payload.
const (
	magicBytes    = "SPKN"
	formatVersion = 1
)

const (
	flagCompressed uint16 = 1 << 0
)

// header precedes the compressed-or-raw msgpack payload on disk.
type header struct {
	Magic    [4]byte
	Version  uint16
	Flags    uint16
	DataLen  uint64
	Checksum uint32
}

// Codec encodes/decodes entity.Record values to the on-disk envelope.
type Codec struct {
	compress bool
}

// NewCodec builds a codec; compress enables gzip when it shrinks the payload.
func NewCodec(compress bool) *Codec {
	return &Codec{compress: compress}
}

// Encode serializes an entity.Record (type tag + msgpack payload) into the
// on-disk binary envelope.
func (c *Codec) Encode(rec entity.Record) ([]byte, error) {
	payload, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, err
	}

	var flags uint16
	if c.compress {
		compressed, err := compressData(payload)
		if err != nil {
			return nil, err
		}
		if len(compressed) < len(payload) {
			payload = compressed
			flags |= flagCompressed
		}
	}

	h := header{
		Version:  formatVersion,
		Flags:    flags,
		DataLen:  uint64(len(payload)),
		Checksum: crc32.ChecksumIEEE(payload),
	}
	copy(h.Magic[:], magicBytes)

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	if _, err := buf.Write(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode, validating the magic, version, and checksum.
func (c *Codec) Decode(raw []byte) (entity.Record, error) {
	var rec entity.Record
	if len(raw) < 20 {
		return rec, errors.New("store: data too short for envelope header")
	}

	r := bytes.NewReader(raw)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return rec, err
	}
	if string(h.Magic[:]) != magicBytes {
		return rec, errors.New("store: invalid magic bytes")
	}
	if h.Version > formatVersion {
		return rec, errors.New("store: unsupported format version")
	}

	payload := make([]byte, h.DataLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return rec, err
	}
	if crc32.ChecksumIEEE(payload) != h.Checksum {
		return rec, errors.New("store: checksum mismatch")
	}

	if h.Flags&flagCompressed != 0 {
		decompressed, err := decompressData(payload)
		if err != nil {
			return rec, err
		}
		payload = decompressed
	}

	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressData(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
