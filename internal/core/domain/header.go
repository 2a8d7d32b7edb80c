package domain

import "strings"

// ScalarKind is a host-representable scalar type appearing in a compiler
// emitted header.
type ScalarKind string

// Scalar kinds the binding surface can map one-to-one onto host types.
const (
	ScalarVoid    ScalarKind = "void"
	ScalarBool    ScalarKind = "bool"
	ScalarInt8    ScalarKind = "int8"
	ScalarInt16   ScalarKind = "int16"
	ScalarInt32   ScalarKind = "int32"
	ScalarInt64   ScalarKind = "int64"
	ScalarUint8   ScalarKind = "uint8"
	ScalarUint16  ScalarKind = "uint16"
	ScalarUint32  ScalarKind = "uint32"
	ScalarUint64  ScalarKind = "uint64"
	ScalarFloat32 ScalarKind = "float32"
	ScalarFloat64 ScalarKind = "float64"
)

// CType returns the C spelling used when re-emitting merged headers.
func (k ScalarKind) CType() string {
	switch k {
	case ScalarVoid:
		return "void"
	case ScalarBool:
		return "bool"
	case ScalarFloat32:
		return "float"
	case ScalarFloat64:
		return "double"
	default:
		// int32 -> int32_t etc.
		return string(k) + "_t"
	}
}

// GoType returns the host-side Go spelling of the scalar.
func (k ScalarKind) GoType() string {
	if k == ScalarVoid {
		return ""
	}
	return string(k)
}

// ParamType is the type of one parameter: a scalar, optionally behind a
// pointer. Pointer parameters cross the boundary as raw buffers with
// caller-supplied length; the binding layer does not bounds-check them.
type ParamType struct {
	Scalar  ScalarKind
	Pointer bool
}

// Param is one named parameter of an exported kernel function.
type Param struct {
	Name string
	Type ParamType
}

// FunctionDecl is one exported function recognized in a compiler-emitted
// header. Kernel records which source declared it, for duplicate-symbol
// diagnostics.
type FunctionDecl struct {
	Name   string
	Kernel string
	Return ScalarKind
	Params []Param
}

// CSignature renders the declaration back into its canonical C prototype.
func (d FunctionDecl) CSignature() string {
	var b strings.Builder
	b.WriteString(d.Return.CType())
	b.WriteByte(' ')
	b.WriteString(d.Name)
	b.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.Scalar.CType())
		if p.Type.Pointer {
			b.WriteString(" *")
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(p.Name)
	}
	if len(d.Params) == 0 {
		b.WriteString("void")
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports whether two declarations have the same signature,
// irrespective of which kernel declared them or how parameters are named.
func (d FunctionDecl) Equal(other FunctionDecl) bool {
	if d.Name != other.Name || d.Return != other.Return || len(d.Params) != len(other.Params) {
		return false
	}
	for i := range d.Params {
		if d.Params[i].Type != other.Params[i].Type {
			return false
		}
	}
	return true
}
