package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/benbjohnson/xform"
	"golang.org/x/tools/go/ast/astutil"
)

// DefaultMemType is the type of a plain "*x" dereference.
const DefaultMemType = "u32"

var binaryOps = map[token.Token]xform.Op{
	token.ADD:  xform.ADD,
	token.SUB:  xform.SUB,
	token.MUL:  xform.MUL,
	token.AND:  xform.AND,
	token.OR:   xform.OR,
	token.XOR:  xform.XOR,
	token.SHL:  xform.SHL,
	token.SHR:  xform.SHR,
	token.EQL:  xform.EQ,
	token.NEQ:  xform.NE,
	token.LSS:  xform.LT,
	token.LEQ:  xform.LE,
	token.GTR:  xform.GT,
	token.GEQ:  xform.GE,
	token.LAND: xform.LAND,
	token.LOR:  xform.LOR,
}

var unaryOps = map[token.Token]xform.Op{
	token.SUB: xform.NEG,
	token.XOR: xform.NOT,
	token.NOT: xform.LNOT,
}

// ParseExpr parses an expression written in Go syntax.
func ParseExpr(s string) (xform.Expr, error) {
	node, err := parser.ParseExpr(s)
	if err != nil {
		return nil, err
	}
	return convertExpr(node)
}

func convertExpr(node ast.Expr) (xform.Expr, error) {
	switch node := astutil.Unparen(node).(type) {
	case *ast.Ident:
		return xform.Register{Name: node.Name}, nil

	case *ast.BasicLit:
		return convertBasicLit(node)

	case *ast.BinaryExpr:
		op, ok := binaryOps[node.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator: %s", node.Op)
		}
		x, err := convertExpr(node.X)
		if err != nil {
			return nil, err
		}
		y, err := convertExpr(node.Y)
		if err != nil {
			return nil, err
		}
		return xform.NewOpExpr(op, x, y), nil

	case *ast.UnaryExpr:
		// Negative literals are values, not negations.
		if lit, ok := astutil.Unparen(node.X).(*ast.BasicLit); ok && node.Op == token.SUB && lit.Kind == token.INT {
			v, err := convertBasicLit(lit)
			if err != nil {
				return nil, err
			}
			return v.(xform.Value).Neg(), nil
		}

		op, ok := unaryOps[node.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator: %s", node.Op)
		}
		x, err := convertExpr(node.X)
		if err != nil {
			return nil, err
		}
		return xform.NewOpExpr(op, x), nil

	case *ast.StarExpr:
		// *(*T)(x) is a typed load.
		if call, ok := astutil.Unparen(node.X).(*ast.CallExpr); ok {
			if star, ok := astutil.Unparen(call.Fun).(*ast.StarExpr); ok {
				typ, ok := star.X.(*ast.Ident)
				if !ok || !isTypeName(typ.Name) {
					return nil, fmt.Errorf("invalid load type: %s", exprString(star.X))
				} else if len(call.Args) != 1 {
					return nil, fmt.Errorf("load of %s: expected 1 address", typ.Name)
				}
				addr, err := convertExpr(call.Args[0])
				if err != nil {
					return nil, err
				}
				return &xform.Mem{Type: typ.Name, Addr: addr}, nil
			}
		}

		addr, err := convertExpr(node.X)
		if err != nil {
			return nil, err
		}
		return &xform.Mem{Type: DefaultMemType, Addr: addr}, nil

	case *ast.CallExpr:
		return convertCallExpr(node)

	default:
		return nil, fmt.Errorf("unsupported expression: %s", exprString(node))
	}
}

func convertCallExpr(node *ast.CallExpr) (xform.Expr, error) {
	fn, ok := node.Fun.(*ast.Ident)
	if !ok {
		return nil, fmt.Errorf("unsupported call: %s", exprString(node.Fun))
	}

	args := make([]xform.Expr, len(node.Args))
	for i := range node.Args {
		arg, err := convertExpr(node.Args[i])
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	switch {
	case isTypeName(fn.Name):
		if len(args) != 1 {
			return nil, fmt.Errorf("cast to %s: expected 1 argument, got %d", fn.Name, len(args))
		}
		return xform.NewOpExpr(xform.CAST, xform.Type{Name: fn.Name}, args[0]), nil
	case fn.Name == "cond":
		if len(args) != 1 {
			return nil, fmt.Errorf("cond: expected 1 argument, got %d", len(args))
		}
		return xform.NewCond(args[0]), nil
	default:
		return xform.NewOpExpr(xform.SFUNC, append([]xform.Expr{xform.SFunc{Name: fn.Name}}, args...)...), nil
	}
}

func convertBasicLit(node *ast.BasicLit) (xform.Expr, error) {
	switch node.Kind {
	case token.INT:
		u, err := strconv.ParseUint(node.Value, 0, 64)
		if err != nil {
			return nil, err
		}
		base := 10
		if s := strings.ToLower(node.Value); strings.HasPrefix(s, "0x") {
			base = 16
		}
		return xform.NewValueUint64(u, base), nil
	case token.STRING:
		s, err := strconv.Unquote(node.Value)
		if err != nil {
			return nil, err
		}
		return xform.Str{Val: s}, nil
	default:
		return nil, fmt.Errorf("unsupported literal: %s", node.Value)
	}
}

// isTypeName returns true if name is an integer type such as "u8" or "i32".
func isTypeName(name string) bool {
	if len(name) < 2 || (name[0] != 'i' && name[0] != 'u') {
		return false
	}
	n, err := strconv.Atoi(name[1:])
	return err == nil && n > 0 && n < 256 && name[1] != '+' && name[1] != '-'
}

// exprString returns the source text of node for error messages, or its
// AST type if it cannot be printed.
func exprString(node ast.Expr) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, token.NewFileSet(), node); err != nil {
		return fmt.Sprintf("%T", node)
	}
	return buf.String()
}
