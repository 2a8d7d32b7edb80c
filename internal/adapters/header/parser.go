// Package header parses and re-emits the C headers the compiler generates
// alongside each object file.
package header

import (
	"os"
	"strings"

	"github.com/lanebuild/lane/internal/core/domain"
	"github.com/lanebuild/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// Parser implements ports.HeaderParser for compiler-emitted C headers.
type Parser struct{}

var _ ports.HeaderParser = (*Parser)(nil)

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// scalarNames maps C spellings in emitted headers to host scalar kinds.
var scalarNames = map[string]domain.ScalarKind{
	"void":     domain.ScalarVoid,
	"bool":     domain.ScalarBool,
	"int8_t":   domain.ScalarInt8,
	"int16_t":  domain.ScalarInt16,
	"int32_t":  domain.ScalarInt32,
	"int64_t":  domain.ScalarInt64,
	"uint8_t":  domain.ScalarUint8,
	"uint16_t": domain.ScalarUint16,
	"uint32_t": domain.ScalarUint32,
	"uint64_t": domain.ScalarUint64,
	"float":    domain.ScalarFloat32,
	"double":   domain.ScalarFloat64,
	"int":      domain.ScalarInt32,
}

// ParseFile reads one emitted header and returns every exported function
// declaration found in it.
func (p *Parser) ParseFile(path string, kernel string) ([]domain.FunctionDecl, error) {
	data, err := os.ReadFile(path) //nolint:gosec // header path is produced by this tool
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read emitted header"), "path", path)
	}
	return Parse(string(data), kernel)
}

// Parse extracts exported function declarations from header text. Any
// prototype whose types fall outside the binding type map fails with
// domain.ErrUnsupportedSignature naming the declaration.
func Parse(text string, kernel string) ([]domain.FunctionDecl, error) {
	var decls []domain.FunctionDecl

	for _, stmt := range statements(text) {
		if !strings.Contains(stmt, "(") {
			continue
		}
		decl, err := parsePrototype(stmt, kernel)
		if err != nil {
			return nil, err
		}
		if decl != nil {
			decls = append(decls, *decl)
		}
	}

	return decls, nil
}

// statements splits header text into semicolon-terminated statements with
// comments and preprocessor lines stripped.
func statements(text string) []string {
	var b strings.Builder
	inLineComment, inBlockComment := false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inLineComment:
			if c == '\n' {
				inLineComment = false
				b.WriteByte('\n')
			}
		case inBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				inBlockComment = false
				i++
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			inLineComment = true
			i++
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			inBlockComment = true
			i++
		default:
			b.WriteByte(c)
		}
	}

	var stmts []string
	var cur strings.Builder
	for _, line := range strings.Split(b.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// Brace/namespace plumbing around the declarations is not a statement.
		if strings.HasPrefix(trimmed, "extern \"C\"") || trimmed == "{" || trimmed == "}" ||
			strings.HasPrefix(trimmed, "namespace") || strings.HasPrefix(trimmed, "} /*") {
			continue
		}
		cur.WriteString(trimmed)
		cur.WriteByte(' ')
		if strings.HasSuffix(trimmed, ";") {
			stmts = append(stmts, strings.TrimSuffix(strings.TrimSpace(cur.String()), ";"))
			cur.Reset()
		}
	}
	return stmts
}

// parsePrototype parses one "ret name(params)" statement. It returns
// (nil, nil) for statements that are not function prototypes at all
// (e.g. typedefs), and an error for prototypes the type map cannot express.
func parsePrototype(stmt string, kernel string) (*domain.FunctionDecl, error) {
	open := strings.IndexByte(stmt, '(')
	closing := strings.LastIndexByte(stmt, ')')
	if open < 0 || closing < open {
		return nil, nil
	}

	head := strings.Fields(stmt[:open])
	if len(head) < 2 {
		return nil, nil
	}
	if head[0] == "typedef" || head[0] == "struct" || head[0] == "enum" {
		return nil, nil
	}
	if head[0] == "extern" {
		head = head[1:]
		if len(head) < 2 {
			return nil, nil
		}
	}

	name := head[len(head)-1]
	retTokens := head[:len(head)-1]
	if strings.HasPrefix(name, "*") || containsAny(retTokens, "*") {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedSignature, "pointer return"), "declaration", strings.TrimSpace(stmt))
	}

	ret, ok := lookupScalar(retTokens)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedSignature, "unmappable return type"), "declaration", strings.TrimSpace(stmt))
	}

	params, err := parseParams(stmt[open+1:closing], stmt)
	if err != nil {
		return nil, err
	}

	return &domain.FunctionDecl{
		Name:   name,
		Kernel: kernel,
		Return: ret,
		Params: params,
	}, nil
}

func parseParams(list string, stmt string) ([]domain.Param, error) {
	list = strings.TrimSpace(list)
	if list == "" || list == "void" {
		return nil, nil
	}

	parts := strings.Split(list, ",")
	params := make([]domain.Param, 0, len(parts))
	for _, raw := range parts {
		raw = strings.TrimSpace(raw)
		if raw == "..." {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedSignature, "variadic signature"), "declaration", strings.TrimSpace(stmt))
		}

		pointer := strings.Contains(raw, "*") || strings.HasSuffix(raw, "[]")
		cleaned := strings.NewReplacer("*", " ", "[]", " ", "const ", " ").Replace(raw)
		tokens := strings.Fields(cleaned)
		if len(tokens) < 2 {
			err := zerr.With(zerr.Wrap(domain.ErrUnsupportedSignature, "unnamed parameter"), "declaration", strings.TrimSpace(stmt))
			return nil, zerr.With(err, "parameter", raw)
		}

		name := tokens[len(tokens)-1]
		kind, ok := lookupScalar(tokens[:len(tokens)-1])
		if !ok || kind == domain.ScalarVoid {
			err := zerr.With(zerr.Wrap(domain.ErrUnsupportedSignature, "unmappable parameter type"), "declaration", strings.TrimSpace(stmt))
			return nil, zerr.With(err, "parameter", raw)
		}

		params = append(params, domain.Param{
			Name: name,
			Type: domain.ParamType{Scalar: kind, Pointer: pointer},
		})
	}
	return params, nil
}

// lookupScalar maps a token run like ["unsigned","int"] or ["uint32_t"]
// onto a scalar kind.
func lookupScalar(tokens []string) (domain.ScalarKind, bool) {
	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "const" || tok == "extern" {
			continue
		}
		filtered = append(filtered, tok)
	}
	switch strings.Join(filtered, " ") {
	case "unsigned int", "unsigned":
		return domain.ScalarUint32, true
	case "unsigned char":
		return domain.ScalarUint8, true
	case "signed char":
		return domain.ScalarInt8, true
	}
	if len(filtered) != 1 {
		return "", false
	}
	kind, ok := scalarNames[filtered[0]]
	return kind, ok
}

func containsAny(tokens []string, sub string) bool {
	for _, t := range tokens {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}
