// Package id mints 32-hex-char identifiers whose first 12 chars encode the
// creation time in unix milliseconds, so ids sort by time.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// New returns exactly 32 lowercase hex characters: 6 bytes of unix ms then
// 10 random bytes.
func New(now time.Time) string {
	var b [16]byte
	var ms [8]byte
	binary.BigEndian.PutUint64(ms[:], uint64(now.UnixMilli()))
	copy(b[:6], ms[2:])
	_, _ = rand.Read(b[6:])
	return hex.EncodeToString(b[:])
}

// Time recovers the millisecond timestamp encoded by New.
func Time(id string) (time.Time, bool) {
	if len(id) != 32 {
		return time.Time{}, false
	}
	raw, err := hex.DecodeString(id[:12])
	if err != nil {
		return time.Time{}, false
	}
	var ms [8]byte
	copy(ms[2:], raw)
	return time.UnixMilli(int64(binary.BigEndian.Uint64(ms[:]))).UTC(), true
}
