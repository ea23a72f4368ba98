package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/benbjohnson/xform"
)

// WriteDot writes e to w as a Graphviz digraph. Each node is labelled with
// its kind and text, and each edge with the operand index.
func WriteDot(w io.Writer, e xform.Expr) error {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	var n int
	writeDotNode(&buf, e, &n, "", 0)
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// writeDotNode writes e and its subtree in preorder. Unless e is the root,
// the edge from parentID is written right after e's node line and before
// any of e's own edges.
func writeDotNode(buf *bytes.Buffer, e xform.Expr, n *int, parentID string, index int) {
	id := "n" + strconv.Itoa(*n)
	*n++

	kind, label, children := dotNode(e)
	fmt.Fprintf(buf, "%q [label=%q]\n", id, kind+"\n"+label)
	if parentID != "" {
		fmt.Fprintf(buf, "%q -> %q [label=\"%d\"]\n", parentID, id, index)
	}
	for i, child := range children {
		writeDotNode(buf, child, n, id, i)
	}
}

// dotNode returns the kind name, label and operands of e.
func dotNode(e xform.Expr) (kind, label string, children []xform.Expr) {
	switch e := e.(type) {
	case *xform.Mem:
		return "Mem", e.Type, []xform.Expr{e.Addr}
	case *xform.OpExpr:
		return "OpExpr", e.Op.String(), e.Args
	case *xform.Cond:
		return "Cond", "", []xform.Expr{e.Expr}
	case xform.Register:
		return "Register", e.String(), nil
	case xform.Value:
		return "Value", e.String(), nil
	case xform.Str:
		return "Str", e.String(), nil
	case xform.Addr:
		return "Addr", e.String(), nil
	case xform.SFunc:
		return "SFunc", e.String(), nil
	case xform.Type:
		return "Type", e.String(), nil
	case xform.StructField:
		return "StructField", e.String(), nil
	default:
		panic("unreachable")
	}
}
