package decode

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spyglass-tools/spyglass/internal/schema"
)

// buf is a little helper for hand-building wire payloads, in the same
// spirit as the RTP header builders in the capture agent tests.
type buf struct{ b []byte }

func (w *buf) u8(v uint8) *buf   { w.b = append(w.b, v); return w }
func (w *buf) u16(v uint16) *buf { w.b = binary.LittleEndian.AppendUint16(w.b, v); return w }
func (w *buf) u32(v uint32) *buf { w.b = binary.LittleEndian.AppendUint32(w.b, v); return w }
func (w *buf) u64(v uint64) *buf { w.b = binary.LittleEndian.AppendUint64(w.b, v); return w }
func (w *buf) f32(v float32) *buf {
	return w.u32(math.Float32bits(v))
}
func (w *buf) f64(v float64) *buf {
	return w.u64(math.Float64bits(v))
}
func (w *buf) str(s string) *buf {
	w.u32(uint32(len(s)))
	w.b = append(w.b, s...)
	return w
}

func TestDecodeRoundTrip(t *testing.T) {
	fields := schema.Compile("uint32 gameId\nvec3 loc\nbool aggressive")
	payload := (&buf{}).u32(42).f32(1.5).f32(2.5).f32(3.5).u8(1).b

	got := Decode(fields, payload)

	require.Len(t, got, 3)
	assert.Equal(t, uint32(42), got["gameId"])
	assert.Equal(t, Vec3{X: 1.5, Y: 2.5, Z: 3.5}, got["loc"])
	assert.Equal(t, true, got["aggressive"])
}

func TestDecodeAllFixedTypes(t *testing.T) {
	fields := schema.Compile(`
int8   a
uint8  b
int16  c
uint16 d
int32  e
uint32 f
int64  g
uint64 h
float  i
double j
`)
	payload := (&buf{}).
		u8(0xFF).u8(0xFF).
		u16(0xFFFE).u16(0xFFFE).
		u32(0xFFFFFFFD).u32(0xFFFFFFFD).
		u64(0xFFFFFFFFFFFFFFFC).u64(0xFFFFFFFFFFFFFFFC).
		f32(3.25).f64(-6.5).b

	got := Decode(fields, payload)

	assert.Equal(t, int8(-1), got["a"])
	assert.Equal(t, uint8(0xFF), got["b"])
	assert.Equal(t, int16(-2), got["c"])
	assert.Equal(t, uint16(0xFFFE), got["d"])
	assert.Equal(t, int32(-3), got["e"])
	assert.Equal(t, uint32(0xFFFFFFFD), got["f"])
	assert.Equal(t, int64(-4), got["g"])
	// full 64-bit precision is preserved
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFC), got["h"])
	assert.Equal(t, float32(3.25), got["i"])
	assert.Equal(t, float64(-6.5), got["j"])
}

func TestDecodeEmptyAndShortBuffers(t *testing.T) {
	fields := schema.Compile("uint32 gameId\nuint8 flag")

	assert.Empty(t, Decode(fields, nil))
	assert.Empty(t, Decode(fields, []byte{}))

	// shorter than the first field: nothing decodes, no error
	got := Decode(fields, []byte{0x01, 0x02})
	assert.Empty(t, got)
}

func TestDecodeTruncatedMiddleFieldStillAdvancesCursor(t *testing.T) {
	// 6 bytes: uint32 decodes, vec3 is truncated (skipped but strided
	// over), trailing fields are past the buffer and dropped.
	fields := schema.Compile("uint32 gameId\nvec3 loc\nuint8 flag")
	payload := (&buf{}).u32(7).u16(0xAAAA).b

	got := Decode(fields, payload)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(7), got["gameId"])
}

func TestDecodeString(t *testing.T) {
	fields := schema.Compile("string name\nuint32 after")
	payload := (&buf{}).str("Velketor").u32(99).b

	got := Decode(fields, payload)
	assert.Equal(t, "Velketor", got["name"])
	assert.Equal(t, uint32(99), got["after"])
}

func TestDecodeStringOverrunOmitsValueAndStepsPastPrefix(t *testing.T) {
	fields := schema.Compile("string name\nuint16 after")
	// declared length 200 with only 2 payload bytes present, then a
	// trailing uint16 the decoder should still reach at prefix+4.
	payload := (&buf{}).u32(200).b
	payload = append(payload, binary.LittleEndian.AppendUint16(nil, 0xBEEF)...)

	got := Decode(fields, payload)
	_, hasName := got["name"]
	assert.False(t, hasName)
	assert.Equal(t, uint16(0xBEEF), got["after"])
}

func TestDecodeArrayYieldsCountOnly(t *testing.T) {
	fields := schema.Compile("array items\nuint8 tail")
	payload := (&buf{}).u32(5).u8(3).b

	got := Decode(fields, payload)
	assert.Equal(t, uint32(5), got["items"])
	// the cursor advances only past the prefix, not any elements
	assert.Equal(t, uint8(3), got["tail"])
}

func TestDecodeUnknownTypeStridesFourBytes(t *testing.T) {
	fields := schema.Compile("mystery blob\nuint32 after")
	payload := (&buf{}).u32(0xDEADBEEF).u32(77).b

	got := Decode(fields, payload)
	_, hasBlob := got["blob"]
	assert.False(t, hasBlob)
	assert.Equal(t, uint32(77), got["after"])
}

func TestDecodePartialVec3Omitted(t *testing.T) {
	fields := schema.Compile("vec3 loc")
	payload := (&buf{}).f32(1).f32(2).b // only 8 of 12 bytes

	assert.Empty(t, Decode(fields, payload))
}

func TestDecodeIsIdempotent(t *testing.T) {
	fields := schema.Compile("uint32 gameId\nstring name\nbool up")
	payload := (&buf{}).u32(1).str("abc").u8(0).b

	first := Decode(fields, payload)
	second := Decode(fields, payload)
	assert.Equal(t, first, second)
}
