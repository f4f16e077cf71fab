// Package shm reads orientation samples from shared-memory snapshot
// buffers written by an external sensor service.
//
// Layout (little-endian, one writer, any number of readers):
//
//	[0:4)   seq   uint32  odd while a write is in progress
//	[4:8)   pad
//	[8:16)  alpha float64 degrees, NaN = absent
//	[16:24) beta  float64
//	[24:32) gamma float64
//	[32:40) ts    float64 seconds, 0 = never populated
//
// Readers take a snapshot guarded by the seq generation check and reject
// torn reads; the buffer carries no other synchronization.
package shm

import (
	"encoding/binary"
	"math"

	"orientd/internal/sensor"
)

const (
	headerSize  = 8
	payloadSize = 32

	// BufferSize is the full size of one reading region.
	BufferSize = headerSize + payloadSize
)

// ReadSnapshot decodes one reading from buf. ok is false when the region is
// too small or the write generation changed mid-read (torn write).
func ReadSnapshot(buf []byte) (sensor.Reading, bool) {
	if len(buf) < BufferSize {
		return sensor.Reading{}, false
	}

	seq := binary.LittleEndian.Uint32(buf[0:4])
	if seq%2 != 0 {
		return sensor.Reading{}, false
	}

	var payload [payloadSize]byte
	copy(payload[:], buf[headerSize:BufferSize])

	if binary.LittleEndian.Uint32(buf[0:4]) != seq {
		return sensor.Reading{}, false
	}

	r := sensor.Reading{
		Alpha:     math.Float64frombits(binary.LittleEndian.Uint64(payload[0:8])),
		Beta:      math.Float64frombits(binary.LittleEndian.Uint64(payload[8:16])),
		Gamma:     math.Float64frombits(binary.LittleEndian.Uint64(payload[16:24])),
		Timestamp: math.Float64frombits(binary.LittleEndian.Uint64(payload[24:32])),
	}
	return r, true
}

// WriteSnapshot encodes r into buf under the seqlock protocol. Single
// writer only.
func WriteSnapshot(buf []byte, r sensor.Reading) {
	if len(buf) < BufferSize {
		return
	}

	seq := binary.LittleEndian.Uint32(buf[0:4])
	binary.LittleEndian.PutUint32(buf[0:4], seq+1) // odd: write in progress

	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(r.Alpha))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(r.Beta))
	binary.LittleEndian.PutUint64(buf[24:32], math.Float64bits(r.Gamma))
	binary.LittleEndian.PutUint64(buf[32:40], math.Float64bits(r.Timestamp))

	binary.LittleEndian.PutUint32(buf[0:4], seq+2)
}
