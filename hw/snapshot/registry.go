// Package snapshot implements the persistence of named byte regions.
//
// Hardware components register the memory they want persisted (registers,
// RAM) under a fixed 4-character identifier. A snapshot is the sequence of
// these regions, in registration order:
//
//	magic   [4]byte  "NBS\x1a"
//	version uint32   little endian
//	chunks:
//	  id    [4]byte
//	  size  uint32   little endian
//	  data  [size]byte
//
// Identifiers and sizes are part of the file format: changing them makes
// existing snapshots unreadable.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unsafe"

	"nesboard/emu/log"
)

const (
	Magic   = "NBS\x1a"
	Version = 1
)

var (
	ErrBadMagic     = errors.New("not a snapshot")
	ErrVersion      = errors.New("unsupported snapshot version")
	ErrSizeMismatch = errors.New("region size mismatch")
)

type region struct {
	id   string
	data []byte
}

// Registry holds the set of persisted regions. The zero value is an empty
// registry ready to use.
type Registry struct {
	regions []region
}

// Add registers data under id. The id must be exactly 4 bytes long and not
// already registered.
func (r *Registry) Add(id string, data []byte) error {
	if len(id) != 4 {
		return fmt.Errorf("region id %q: must be 4 bytes long", id)
	}
	if len(data) == 0 {
		return fmt.Errorf("region %s: empty", id)
	}
	if r.index(id) != -1 {
		return fmt.Errorf("region %s: already registered", id)
	}
	r.regions = append(r.regions, region{id: id, data: data})
	log.ModSnapshot.DebugZ("region registered").String("id", id).Int("size", len(data)).End()
	return nil
}

// MustAdd is like Add but panics on error.
func (r *Registry) MustAdd(id string, data []byte) {
	if err := r.Add(id, data); err != nil {
		panic(err)
	}
}

// MustAddUint8 registers a single byte register.
func (r *Registry) MustAddUint8(id string, v *uint8) {
	r.MustAdd(id, unsafe.Slice(v, 1))
}

// Remove unregisters the region with the given id, if any.
func (r *Registry) Remove(id string) {
	if i := r.index(id); i != -1 {
		r.regions = append(r.regions[:i], r.regions[i+1:]...)
	}
}

func (r *Registry) index(id string) int {
	for i := range r.regions {
		if r.regions[i].id == id {
			return i
		}
	}
	return -1
}

// RegionInfo describes a registered region.
type RegionInfo struct {
	ID   string
	Size int
}

// Regions lists registered regions, in registration order.
func (r *Registry) Regions() []RegionInfo {
	infos := make([]RegionInfo, len(r.regions))
	for i, reg := range r.regions {
		infos[i] = RegionInfo{ID: reg.id, Size: len(reg.data)}
	}
	return infos
}

// Save writes a snapshot of all registered regions to w.
func (r *Registry) Save(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	buf.Write(binary.LittleEndian.AppendUint32(nil, Version))

	for _, reg := range r.regions {
		buf.WriteString(reg.id)
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(reg.data))))
		buf.Write(reg.data)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from rd and overwrites the registered regions with
// its content. It returns the snapshot version.
//
// Chunks with an unknown id are skipped, and regions absent from the
// snapshot are left untouched. The snapshot is fully decoded and validated
// before any region is modified, so on error no region has changed.
func (r *Registry) Load(rd io.Reader) (int, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(rd, hdr[:]); err != nil {
		return 0, fmt.Errorf("read snapshot header: %w", err)
	}
	if string(hdr[:4]) != Magic {
		return 0, ErrBadMagic
	}
	version := int(binary.LittleEndian.Uint32(hdr[4:]))
	if version < 1 || version > Version {
		return 0, fmt.Errorf("%w: %d", ErrVersion, version)
	}

	type pending struct {
		dst  []byte
		data []byte
	}
	var commits []pending

	for {
		var chdr [8]byte
		_, err := io.ReadFull(rd, chdr[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read chunk header: %w", err)
		}

		id := string(chdr[:4])
		size := binary.LittleEndian.Uint32(chdr[4:])

		i := r.index(id)
		if i == -1 {
			log.ModSnapshot.WarnZ("skipping unknown region").String("id", id).Uint32("size", size).End()
			if _, err := io.CopyN(io.Discard, rd, int64(size)); err != nil {
				return 0, fmt.Errorf("region %s: %w", id, err)
			}
			continue
		}

		reg := r.regions[i]
		if int(size) != len(reg.data) {
			return 0, fmt.Errorf("region %s: %w: got %d, want %d", id, ErrSizeMismatch, size, len(reg.data))
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(rd, data); err != nil {
			return 0, fmt.Errorf("region %s: %w", id, err)
		}
		commits = append(commits, pending{dst: reg.data, data: data})
	}

	for _, c := range commits {
		copy(c.dst, c.data)
	}
	return version, nil
}
