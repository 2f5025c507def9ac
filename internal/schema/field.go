// Package schema loads versioned field-layout descriptions and compiles
// them into ordered field descriptor lists the decoder consumes.
package schema

// FieldType is the closed set of wire types a schema line may declare.
// Unrecognized type names compile to TypeUnknown rather than failing;
// that keeps a stale schema usable for the fields it does describe.
type FieldType int

const (
	TypeInt8 FieldType = iota
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat
	TypeDouble
	TypeBool
	TypeVec3
	TypeString
	TypeArray
	TypeUnknown
)

// typeNames maps schema grammar tokens to field types. Several aliases
// share a variant: byte is uint8, angle is a float on the wire, ref is
// an entity id stored as uint32.
var typeNames = map[string]FieldType{
	"int8":   TypeInt8,
	"uint8":  TypeUint8,
	"byte":   TypeUint8,
	"bool":   TypeBool,
	"int16":  TypeInt16,
	"uint16": TypeUint16,
	"int32":  TypeInt32,
	"uint32": TypeUint32,
	"ref":    TypeUint32,
	"float":  TypeFloat,
	"angle":  TypeFloat,
	"int64":  TypeInt64,
	"uint64": TypeUint64,
	"double": TypeDouble,
	"vec3":   TypeVec3,
	"string": TypeString,
	"array":  TypeArray,
}

// Width returns the field's declared stride in bytes. For string and
// array this is only the 4-byte length prefix; the payload consumed at
// decode time is per-instance and unknowable here.
func (t FieldType) Width() uint32 {
	switch t {
	case TypeInt8, TypeUint8, TypeBool:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt64, TypeUint64, TypeDouble:
		return 8
	case TypeVec3:
		return 12
	default:
		// int32/uint32/float, string/array prefixes, and the unknown
		// fallback all stride 4 bytes.
		return 4
	}
}

func (t FieldType) String() string {
	switch t {
	case TypeInt8:
		return "int8"
	case TypeUint8:
		return "uint8"
	case TypeInt16:
		return "int16"
	case TypeUint16:
		return "uint16"
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeInt64:
		return "int64"
	case TypeUint64:
		return "uint64"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	case TypeVec3:
		return "vec3"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// FieldDescriptor is one typed, named field of a message layout.
// Offset is the cumulative byte offset under the fixed-stride
// assumption. It is advisory only: the decoder tracks its own cursor
// because actual offsets diverge after the first variable-length field.
type FieldDescriptor struct {
	Name   string
	Type   FieldType
	Offset uint32
	Size   uint32
}
