package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"github.com/dshills/docsync/pkg/types"
)

// MetaName is the exported binding read as document metadata
const MetaName = "meta"

// ExtractMeta parses an import/export block and returns the primitive
// properties of `export const meta = {...}`. found is false when the block
// has no such declaration.
func ExtractMeta(esm []byte) (meta types.Meta, found bool, err error) {
	tree, err := js.Parse(parse.NewInputBytes(esm), js.Options{})
	if err != nil {
		return nil, false, err
	}
	for _, stmt := range tree.List {
		export, ok := stmt.(*js.ExportStmt)
		if !ok || export.Default {
			continue
		}
		decl, ok := export.Decl.(*js.VarDecl)
		if !ok {
			continue
		}
		for _, binding := range decl.List {
			v, ok := binding.Binding.(*js.Var)
			if !ok || string(v.Data) != MetaName {
				continue
			}
			obj, ok := binding.Default.(*js.ObjectExpr)
			if !ok {
				continue
			}
			return objectMeta(obj), true, nil
		}
	}
	return nil, false, nil
}

func objectMeta(obj *js.ObjectExpr) types.Meta {
	meta := make(types.Meta, len(obj.List))
	for _, prop := range obj.List {
		if prop.Spread || prop.Name == nil || prop.Name.IsComputed() || prop.Init != nil {
			continue
		}
		key, ok := propertyKey(prop.Name.Literal)
		if !ok {
			continue
		}
		if value, ok := primitive(prop.Value); ok {
			meta[key] = value
		}
	}
	return meta
}

func propertyKey(lit js.LiteralExpr) (string, bool) {
	switch {
	case lit.TokenType == js.StringToken:
		return unquote(lit.Data), true
	case len(lit.Data) > 0:
		return string(lit.Data), true
	}
	return "", false
}

// primitive converts literal expressions to Go values. Objects, arrays,
// templates, identifiers and calls are not primitives.
func primitive(expr js.IExpr) (any, bool) {
	switch e := expr.(type) {
	case *js.LiteralExpr:
		switch {
		case e.TokenType == js.StringToken:
			return unquote(e.Data), true
		case e.TokenType == js.TrueToken:
			return true, true
		case e.TokenType == js.FalseToken:
			return false, true
		case e.TokenType == js.RegExpToken:
			return string(e.Data), true
		case js.IsNumeric(e.TokenType):
			return number(e.Data)
		}
	case *js.UnaryExpr:
		if e.Op == js.NegToken {
			if v, ok := primitive(e.X); ok {
				if f, isNum := v.(float64); isNum {
					return -f, true
				}
			}
		}
	case *js.GroupExpr:
		return primitive(e.X)
	}
	return nil, false
}

func number(data []byte) (any, bool) {
	s := strings.TrimSuffix(strings.ReplaceAll(string(data), "_", ""), "n")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	// hex, octal and binary literals
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i), true
	}
	return nil, false
}

// unquote decodes a quoted JS string literal
func unquote(data []byte) string {
	if len(data) < 2 {
		return string(data)
	}
	s := data[1 : len(data)-1]
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if r, n := hexRune(s[i+1:], 2); n > 0 {
				sb.WriteRune(r)
				i += n
				continue
			}
			sb.WriteByte('x')
		case 'u':
			if i+1 < len(s) && s[i+1] == '{' {
				end := strings.IndexByte(string(s[i+1:]), '}')
				if end > 1 {
					if r, n := hexRune(s[i+2:i+1+end], end-1); n > 0 {
						sb.WriteRune(r)
						i += end + 1
						continue
					}
				}
			} else if r, n := hexRune(s[i+1:], 4); n > 0 {
				sb.WriteRune(r)
				i += n
				continue
			}
			sb.WriteByte('u')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func hexRune(b []byte, width int) (rune, int) {
	if len(b) < width {
		return 0, 0
	}
	v, err := strconv.ParseUint(string(b[:width]), 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, 0
	}
	return rune(v), width
}

func describeJSError(err error) string {
	if perr, ok := err.(*parse.Error); ok {
		return fmt.Sprintf("line %d col %d: %s", perr.Line, perr.Column, perr.Message)
	}
	return err.Error()
}
