package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version   byte = 1
	kindEntry byte = 1
)

var (
	ErrCorrupt = errors.New("tiercache: corrupt entry")
	magic4     = [...]byte{'T', 'I', 'E', 'R'}
)

// Entry is the decoded form of a stored frame. ExpiresAt is zero when the
// entry has no logical expiry.
type Entry struct {
	InsertedAt time.Time
	ExpiresAt  time.Time
	Payload    []byte
}

// Expired reports whether the entry's logical TTL has elapsed at now.
// Stores without native per-entry TTL rely on this check at read time.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// RemainingTTL returns the time left until expiry, or 0 for entries
// without one. Used when promoting a hit into faster layers so the copy
// does not outlive the original.
func (e Entry) RemainingTTL(now time.Time) time.Duration {
	if e.ExpiresAt.IsZero() {
		return 0
	}
	return e.ExpiresAt.Sub(now)
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames a payload:
//
//	magic(4) | ver(1) | kind(1=entry) | insertedAt unix ms (u64 be) |
//	expiresAt unix ms (u64 be, 0 = none) | vlen(u32 be) | payload(vlen)
func Encode(insertedAt time.Time, ttl time.Duration, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(insertedAt.UnixMilli()))
	buf.Write(u8[:])

	var exp uint64
	if ttl > 0 {
		exp = uint64(insertedAt.Add(ttl).UnixMilli())
	}
	binary.BigEndian.PutUint64(u8[:], exp)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode parses a frame. Framing is strict: bad magic, wrong version and
// trailing bytes are all ErrCorrupt, so foreign or truncated writes are
// detected and can be self-healed by the caller.
func Decode(b []byte) (Entry, error) {
	const hdr = 4 + 1 + 1 + 8 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return Entry{}, ErrCorrupt
	}

	off := 6

	ins := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	exp := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // reject short AND trailing bytes
		return Entry{}, ErrCorrupt
	}

	e := Entry{
		InsertedAt: time.UnixMilli(int64(ins)),
		Payload:    b[off : off+vlen],
	}
	if exp != 0 {
		e.ExpiresAt = time.UnixMilli(int64(exp))
	}
	return e, nil
}
