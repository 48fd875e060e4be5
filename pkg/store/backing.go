package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/axontrace/spikenet/pkg/entity"
	"github.com/axontrace/spikenet/pkg/idalloc"
)

// Backing is the durable K->record map fronted by Cache's LRU: a data
// directory of one encoded file per key, a write-ahead log of pending writes
// replayed on startup, and an atomic temp-file-then-rename write path.
type Backing struct {
	basePath string
	codec    *Codec

	walPath string
	walMu   sync.Mutex

	dataMu sync.Mutex

	// writeMu serializes Write, so the WAL holds at most one pending record
	// when truncateWAL clears it.
	writeMu sync.Mutex
}

// NewBacking opens (creating if absent) a backing store rooted at basePath.
// On startup it replays any WAL entries left by an unclean shutdown.
func NewBacking(basePath string, compress bool) (*Backing, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "data"), 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	b := &Backing{
		basePath: basePath,
		codec:    NewCodec(compress),
		walPath:  filepath.Join(basePath, "wal.log"),
	}

	if err := b.replayWAL(); err != nil {
		return nil, fmt.Errorf("store: replay wal: %w", err)
	}
	return b, nil
}

func (b *Backing) recordPath(id idalloc.ID) string {
	return filepath.Join(b.basePath, "data", fmt.Sprintf("%020d.rec", uint64(id)))
}

// Write appends id's record to the WAL, then atomically writes the data file
// and truncates the WAL entry for it. A process crash between the two leaves
// the WAL entry to be replayed on the next NewBacking.
func (b *Backing) Write(id idalloc.ID, rec entity.Record) error {
	encoded, err := b.codec.Encode(rec)
	if err != nil {
		return err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := b.appendWAL(id, encoded); err != nil {
		return err
	}
	if err := b.writeAtomically(b.recordPath(id), encoded); err != nil {
		return err
	}
	return b.truncateWAL()
}

// Read loads and decodes id's record, or returns errs-compatible ErrNotExist
// via os semantics (callers check os.IsNotExist).
func (b *Backing) Read(id idalloc.ID) (entity.Record, error) {
	b.dataMu.Lock()
	defer b.dataMu.Unlock()

	raw, err := os.ReadFile(b.recordPath(id))
	if err != nil {
		return entity.Record{}, err
	}
	return b.codec.Decode(raw)
}

// Delete removes id's on-disk record, if present.
func (b *Backing) Delete(id idalloc.ID) error {
	b.dataMu.Lock()
	defer b.dataMu.Unlock()
	err := os.Remove(b.recordPath(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (b *Backing) writeAtomically(path string, data []byte) error {
	b.dataMu.Lock()
	defer b.dataMu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// walRecord is length-prefixed id + payload + trailing crc32.
func (b *Backing) appendWAL(id idalloc.ID, payload []byte) error {
	b.walMu.Lock()
	defer b.walMu.Unlock()

	f, err := os.OpenFile(b.walPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint64(id))
	binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	binary.Write(buf, binary.LittleEndian, crc32.ChecksumIEEE(payload))

	_, err = f.Write(buf.Bytes())
	return err
}

// truncateWAL clears the log once every pending write has been durably
// applied to its data file. A coarser-grained approach than per-record
// removal, following a checkpoint-then-truncate idiom.
func (b *Backing) truncateWAL() error {
	b.walMu.Lock()
	defer b.walMu.Unlock()
	return os.WriteFile(b.walPath, nil, 0o644)
}

// replayWAL re-applies any WAL records left over from an unclean shutdown.
func (b *Backing) replayWAL() error {
	data, err := os.ReadFile(b.walPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var id uint64
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			break
		}
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			break
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			break
		}
		var checksum uint32
		if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
			break
		}
		if crc32.ChecksumIEEE(payload) != checksum {
			continue // corrupt tail record; skip rather than fail startup
		}
		if err := b.writeAtomically(b.recordPath(idalloc.ID(id)), payload); err != nil {
			return err
		}
	}
	return b.truncateWAL()
}

// ValidateAll re-reads and decodes every record on disk, reporting any whose
// checksum or msgpack payload is malformed. A startup/periodic integrity
// sweep.
func (b *Backing) ValidateAll() (checked int, corrupt []idalloc.ID, err error) {
	dir := filepath.Join(b.basePath, "data")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var id uint64
		if _, err := fmt.Sscanf(e.Name(), "%020d.rec", &id); err != nil {
			continue
		}
		checked++
		if _, err := b.Read(idalloc.ID(id)); err != nil {
			corrupt = append(corrupt, idalloc.ID(id))
		}
	}
	return checked, corrupt, nil
}
