// internal/classify/typeof.go
package classify

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/solatis/namekeeper/internal/naming"
)

/*
 * Syntactic type classification.
 *
 * An annotation wins over an initializer. Nullable union members (null,
 * undefined) are dropped first; a union classifies only when every remaining
 * member classifies to the same single constraint, so `string | number` is
 * none of the named types. Literal types widen: 'a' | 'b' is string.
 */

// typeOf classifies a declaration from its type annotation, falling back to
// its initializer when no annotation is present.
func typeOf(annotation, value *sitter.Node, src []byte) naming.TypeConstraint {
	if annotation != nil {
		return typeOfType(annotation, src)
	}
	return typeOfValue(value, src)
}

// unwrapAnnotation strips a type_annotation wrapper and parentheses.
func unwrapAnnotation(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "type_annotation", "parenthesized_type":
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return nil
}

func typeOfType(n *sitter.Node, src []byte) naming.TypeConstraint {
	n = unwrapAnnotation(n)
	if n == nil {
		return 0
	}

	switch n.Type() {
	case "predefined_type":
		return predefined(n.Content(src))
	case "literal_type":
		if lit := n.NamedChild(0); lit != nil {
			return typeOfValue(lit, src)
		}
	case "template_literal_type":
		return naming.TypeString
	case "array_type", "tuple_type":
		return naming.TypeArray
	case "readonly_type":
		return typeOfType(n.NamedChild(0), src)
	case "generic_type":
		if name := n.ChildByFieldName("name"); name != nil {
			switch name.Content(src) {
			case "Array", "ReadonlyArray":
				return naming.TypeArray
			}
		}
	case "function_type":
		return naming.TypeFunction
	case "union_type":
		return unionType(n, src)
	}
	return 0
}

func predefined(name string) naming.TypeConstraint {
	switch name {
	case "string":
		return naming.TypeString
	case "number":
		return naming.TypeNumber
	case "boolean":
		return naming.TypeBoolean
	}
	return 0
}

func unionType(n *sitter.Node, src []byte) naming.TypeConstraint {
	var result naming.TypeConstraint
	seen := false
	for _, part := range unionMembers(n) {
		switch part.Content(src) {
		case "null", "undefined":
			continue
		}
		tc := typeOfType(part, src)
		if tc == 0 || (seen && tc != result) {
			return 0
		}
		result, seen = tc, true
	}
	return result
}

func unionMembers(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "union_type" {
			out = append(out, unionMembers(c)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func typeOfValue(n *sitter.Node, src []byte) naming.TypeConstraint {
	if n == nil {
		return 0
	}

	switch n.Type() {
	case "string", "template_string":
		return naming.TypeString
	case "number":
		return naming.TypeNumber
	case "true", "false":
		return naming.TypeBoolean
	case "array":
		return naming.TypeArray
	case "arrow_function", "function", "function_expression", "generator_function":
		return naming.TypeFunction
	case "parenthesized_expression", "non_null_expression", "satisfies_expression":
		return typeOfValue(n.NamedChild(0), src)
	case "as_expression":
		if n.NamedChildCount() == 2 {
			return typeOfType(n.NamedChild(1), src)
		}
	case "unary_expression":
		if op := n.ChildByFieldName("operator"); op != nil {
			switch op.Content(src) {
			case "!":
				return naming.TypeBoolean
			case "-", "+", "~":
				return naming.TypeNumber
			case "typeof":
				return naming.TypeString
			}
		}
	case "binary_expression":
		return binaryType(n, src)
	case "new_expression":
		if c := n.ChildByFieldName("constructor"); c != nil && c.Content(src) == "Array" {
			return naming.TypeArray
		}
	}
	return 0
}

func binaryType(n *sitter.Node, src []byte) naming.TypeConstraint {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return 0
	}
	switch op.Content(src) {
	case "==", "===", "!=", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return naming.TypeBoolean
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		return naming.TypeNumber
	case "+":
		left := typeOfValue(n.ChildByFieldName("left"), src)
		right := typeOfValue(n.ChildByFieldName("right"), src)
		if left == naming.TypeString || right == naming.TypeString {
			return naming.TypeString
		}
		if left == naming.TypeNumber && right == naming.TypeNumber {
			return naming.TypeNumber
		}
	}
	return 0
}

// accessorType classifies a getter by its return type and a setter by its
// first parameter's annotation.
func accessorType(m *sitter.Node, src []byte) naming.TypeConstraint {
	if rt := m.ChildByFieldName("return_type"); rt != nil {
		return typeOfType(rt, src)
	}
	params := m.ChildByFieldName("parameters")
	if params == nil || params.NamedChildCount() == 0 {
		return 0
	}
	p := params.NamedChild(0)
	return typeOf(p.ChildByFieldName("type"), p.ChildByFieldName("value"), src)
}
