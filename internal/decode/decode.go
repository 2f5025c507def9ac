// Package decode reads typed field values out of raw message buffers
// according to a compiled schema.
//
// The buffer is live network data the remote peer controls, so nothing here
// may fail hard: a truncated or malformed buffer degrades to a partial
// field map. The cursor is tracked incrementally rather than trusted
// from the compiled offsets, because those are only valid up to the
// first variable-length field.
package decode

import (
	"encoding/binary"
	"math"

	"github.com/spyglass-tools/spyglass/internal/schema"
)

// Vec3 is a 3D coordinate decoded from three consecutive float32s.
type Vec3 struct {
	X float32
	Y float32
	Z float32
}

// Fields maps field name to decoded value. A field absent from the map
// was either truncated away or has no decode rule (unknown type).
type Fields map[string]any

// Decode walks the descriptor list over buf with a running cursor.
// Per field: if the cursor is already past the buffer, decoding stops;
// if the remaining bytes cannot hold the field's width, its value is
// omitted but the cursor still advances by the declared width so later
// fields keep the best available alignment. All integers are
// little-endian.
func Decode(fields []schema.FieldDescriptor, buf []byte) Fields {
	out := make(Fields)
	cursor := 0

	for _, fd := range fields {
		if cursor >= len(buf) {
			break
		}
		rest := buf[cursor:]
		advance := int(fd.Size)

		switch fd.Type {
		case schema.TypeInt8:
			if len(rest) >= 1 {
				out[fd.Name] = int8(rest[0])
			}
		case schema.TypeUint8:
			if len(rest) >= 1 {
				out[fd.Name] = rest[0]
			}
		case schema.TypeBool:
			if len(rest) >= 1 {
				out[fd.Name] = rest[0] != 0
			}
		case schema.TypeInt16:
			if len(rest) >= 2 {
				out[fd.Name] = int16(binary.LittleEndian.Uint16(rest))
			}
		case schema.TypeUint16:
			if len(rest) >= 2 {
				out[fd.Name] = binary.LittleEndian.Uint16(rest)
			}
		case schema.TypeInt32:
			if len(rest) >= 4 {
				out[fd.Name] = int32(binary.LittleEndian.Uint32(rest))
			}
		case schema.TypeUint32:
			if len(rest) >= 4 {
				out[fd.Name] = binary.LittleEndian.Uint32(rest)
			}
		case schema.TypeInt64:
			if len(rest) >= 8 {
				out[fd.Name] = int64(binary.LittleEndian.Uint64(rest))
			}
		case schema.TypeUint64:
			if len(rest) >= 8 {
				out[fd.Name] = binary.LittleEndian.Uint64(rest)
			}
		case schema.TypeFloat:
			if len(rest) >= 4 {
				out[fd.Name] = math.Float32frombits(binary.LittleEndian.Uint32(rest))
			}
		case schema.TypeDouble:
			if len(rest) >= 8 {
				out[fd.Name] = math.Float64frombits(binary.LittleEndian.Uint64(rest))
			}
		case schema.TypeVec3:
			// all-or-nothing: a partial vec3 is never produced
			if len(rest) >= 12 {
				out[fd.Name] = Vec3{
					X: math.Float32frombits(binary.LittleEndian.Uint32(rest[0:4])),
					Y: math.Float32frombits(binary.LittleEndian.Uint32(rest[4:8])),
					Z: math.Float32frombits(binary.LittleEndian.Uint32(rest[8:12])),
				}
			}
		case schema.TypeString:
			if len(rest) >= 4 {
				n := int(binary.LittleEndian.Uint32(rest))
				if n >= 0 && 4+n <= len(rest) {
					out[fd.Name] = string(rest[4 : 4+n])
					advance = 4 + n
				}
				// declared payload overruns the buffer: omit the value
				// and step past the prefix only
			}
		case schema.TypeArray:
			// element contents are not modeled; the count is the value
			if len(rest) >= 4 {
				out[fd.Name] = binary.LittleEndian.Uint32(rest)
			}
		case schema.TypeUnknown:
			// no decode rule, stride only
		}

		cursor += advance
	}
	return out
}
