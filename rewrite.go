package xform

// Rule rewrites a single node. It returns the replacement and true, or
// false to keep the node as is. Rules are applied by Rewrite, which
// supplies the recursion.
type Rule func(e Expr) (Expr, bool)

// apply returns the result of r on e, or e itself if r made no change.
func (r Rule) apply(e Expr) Expr {
	if other, ok := r(e); ok {
		return other
	}
	return e
}

// Rewrite applies rule to every subexpression of e in depth-first order,
// children before their parent, and returns the rewritten tree.
//
// A Mem or OpExpr whose children changed is rebuilt before rule sees it;
// the original node is never modified. A Cond is the exception: its tested
// expression is rewritten and stored back into the same *Cond so that every
// holder of the pointer observes the change. The rule itself is not applied
// to the Cond.
func Rewrite(e Expr, rule Rule) Expr {
	switch e := e.(type) {
	case *Mem:
		if addr := Rewrite(e.Addr, rule); addr != e.Addr {
			e = &Mem{Type: e.Type, Addr: addr}
		}
		return rule.apply(e)

	case *OpExpr:
		var args []Expr
		for i, arg := range e.Args {
			other := Rewrite(arg, rule)
			if other != arg && args == nil {
				args = make([]Expr, len(e.Args))
				copy(args, e.Args[:i])
			}
			if args != nil {
				args[i] = other
			}
		}
		if args != nil {
			e = &OpExpr{Op: e.Op, Args: args}
		}
		return rule.apply(e)

	case *Cond:
		if other := Rewrite(e.Expr, rule); other != e.Expr {
			e.Expr = other
		}
		return e

	case Register, Str, Addr, SFunc, Type, StructField, Value:
		return rule.apply(e)

	default:
		panic("unreachable")
	}
}
