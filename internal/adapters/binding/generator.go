// Package binding generates the Go calling surface for a compiled archive.
package binding

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// Generator implements ports.BindingGenerator, emitting one cgo file whose
// wrappers expose every exported kernel function with host-native types.
type Generator struct{}

var _ ports.BindingGenerator = (*Generator)(nil)

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// Generate renders the binding file for the archive. The declarations are
// exactly the set that drove duplicate-symbol checking, which keeps the
// generated surface consistent with the symbols actually archived.
func (g *Generator) Generate(archive domain.OutputArchive, pkg string) ([]byte, error) {
	var b strings.Builder

	b.WriteString("// Code generated by lane. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "// Package %s exposes the SPMD kernels compiled into %s.\n", pkg, filepath.Base(archive.Path))
	b.WriteString("//\n")
	b.WriteString("// Pointer parameters cross the foreign boundary unchecked: the caller\n")
	b.WriteString("// supplies buffers sized for the kernel's access pattern. This is the\n")
	b.WriteString("// one intentionally unsafe surface of the binding.\n")
	b.WriteString("//\n")
	b.WriteString("// Kernels using launch statements additionally need a task runtime\n")
	b.WriteString("// resolving ISPCLaunch, ISPCSync, and ISPCAlloc; building with the task\n")
	b.WriteString("// system enabled bundles one into the archive.\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)

	b.WriteString("/*\n")
	b.WriteString("#cgo CFLAGS: -I${SRCDIR}\n")
	fmt.Fprintf(&b, "#cgo LDFLAGS: -L${SRCDIR} -l%s\n", archive.LibName)
	b.WriteString("#include <stdint.h>\n")
	b.WriteString("#include <stdbool.h>\n")
	fmt.Fprintf(&b, "#include %q\n", filepath.Base(archive.HeaderPath))
	b.WriteString("*/\n")
	b.WriteString("import \"C\"\n")

	needsUnsafe := false
	for _, d := range archive.Decls {
		for _, p := range d.Params {
			if p.Type.Pointer {
				needsUnsafe = true
			}
		}
	}
	if needsUnsafe {
		b.WriteString("\nimport \"unsafe\"\n")
	}

	goNames := make(map[string]string, len(archive.Decls))
	for _, d := range archive.Decls {
		goName := exportedName(d.Name)
		if prev, taken := goNames[goName]; taken {
			err := zerr.With(zerr.Wrap(domain.ErrDuplicateSymbol, "two symbols map to one Go name"), "go_name", goName)
			err = zerr.With(err, "symbol_a", prev)
			return nil, zerr.With(err, "symbol_b", d.Name)
		}
		goNames[goName] = d.Name

		wrapper, err := renderWrapper(goName, d)
		if err != nil {
			return nil, err
		}
		b.WriteString("\n")
		b.WriteString(wrapper)
	}

	return []byte(b.String()), nil
}

func renderWrapper(goName string, d domain.FunctionDecl) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "// %s calls the compiled kernel function %s from %s.\n", goName, d.Name, d.Kernel)

	var params, args []string
	for _, p := range d.Params {
		goType, cExpr, err := mapParam(p)
		if err != nil {
			return "", zerr.With(err, "declaration", d.CSignature())
		}
		params = append(params, paramName(p.Name)+" "+goType)
		args = append(args, cExpr)
	}

	signature := fmt.Sprintf("func %s(%s)", goName, strings.Join(params, ", "))
	call := fmt.Sprintf("C.%s(%s)", d.Name, strings.Join(args, ", "))

	if d.Return == domain.ScalarVoid {
		fmt.Fprintf(&b, "%s {\n\t%s\n}\n", signature, call)
		return b.String(), nil
	}

	retType := d.Return.GoType()
	fmt.Fprintf(&b, "%s %s {\n\treturn %s(%s)\n}\n", signature, retType, retType, call)
	return b.String(), nil
}

// mapParam returns the wrapper parameter's Go type and the C argument
// expression converting it.
func mapParam(p domain.Param) (string, string, error) {
	name := paramName(p.Name)
	cType, ok := cTypeNames[p.Type.Scalar]
	if !ok {
		return "", "", zerr.With(zerr.Wrap(domain.ErrUnsupportedSignature, "no C type mapping"), "parameter", p.Name)
	}

	if p.Type.Pointer {
		// unsafe.SliceData tolerates empty slices; the kernel receives NULL.
		expr := fmt.Sprintf("(*C.%s)(unsafe.Pointer(unsafe.SliceData(%s)))", cType, name)
		return "[]" + p.Type.Scalar.GoType(), expr, nil
	}

	return p.Type.Scalar.GoType(), fmt.Sprintf("C.%s(%s)", cType, name), nil
}

var cTypeNames = map[domain.ScalarKind]string{
	domain.ScalarBool:    "bool",
	domain.ScalarInt8:    "int8_t",
	domain.ScalarInt16:   "int16_t",
	domain.ScalarInt32:   "int32_t",
	domain.ScalarInt64:   "int64_t",
	domain.ScalarUint8:   "uint8_t",
	domain.ScalarUint16:  "uint16_t",
	domain.ScalarUint32:  "uint32_t",
	domain.ScalarUint64:  "uint64_t",
	domain.ScalarFloat32: "float",
	domain.ScalarFloat64: "double",
}

// exportedName converts a C symbol like "mandelbrot_ispc" into an exported
// Go identifier like "MandelbrotIspc".
func exportedName(symbol string) string {
	parts := strings.Split(symbol, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// paramName avoids shadowing Go keywords in generated wrappers.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

func paramName(name string) string {
	if goKeywords[name] {
		return name + "_"
	}
	return name
}
