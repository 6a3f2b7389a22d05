package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortRecord is returned when a byte slice does not hold whole blade records
var ErrShortRecord = errors.New("core: buffer is not a whole number of blade records")

// MarshalBinary encodes the blade in its 64-byte GPU layout
func (b BladeRecord) MarshalBinary() ([]byte, error) {
	buf := make([]byte, BladeRecordSize)
	b.put(buf)
	return buf, nil
}

// UnmarshalBinary decodes a blade from its 64-byte GPU layout
func (b *BladeRecord) UnmarshalBinary(data []byte) error {
	if len(data) != BladeRecordSize {
		return fmt.Errorf("%w: got %d bytes", ErrShortRecord, len(data))
	}
	b.get(data)
	return nil
}

// EncodeBlades appends the GPU layout of blades to dst and returns the result
func EncodeBlades(dst []byte, blades []BladeRecord) []byte {
	start := len(dst)
	need := start + len(blades)*BladeRecordSize
	if cap(dst) < need {
		grown := make([]byte, start, need)
		copy(grown, dst)
		dst = grown
	}
	dst = dst[:need]
	for i := range blades {
		blades[i].put(dst[start+i*BladeRecordSize:])
	}
	return dst
}

// DecodeBlades decodes every record in src
func DecodeBlades(src []byte) ([]BladeRecord, error) {
	if len(src)%BladeRecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortRecord, len(src))
	}
	blades := make([]BladeRecord, len(src)/BladeRecordSize)
	for i := range blades {
		blades[i].get(src[i*BladeRecordSize:])
	}
	return blades, nil
}

func (b *BladeRecord) put(buf []byte) {
	vecs := [4]*[4]float32{(*[4]float32)(&b.V0), (*[4]float32)(&b.V1), (*[4]float32)(&b.V2), (*[4]float32)(&b.Up)}
	for i, v := range vecs {
		for j, f := range v {
			binary.LittleEndian.PutUint32(buf[(i*4+j)*4:], math.Float32bits(f))
		}
	}
}

func (b *BladeRecord) get(buf []byte) {
	vecs := [4]*[4]float32{(*[4]float32)(&b.V0), (*[4]float32)(&b.V1), (*[4]float32)(&b.V2), (*[4]float32)(&b.Up)}
	for i, v := range vecs {
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[(i*4+j)*4:]))
		}
	}
}
