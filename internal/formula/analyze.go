package formula

import (
	"errors"
	"fmt"
	"sort"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/parser"
)

// analysis holds what static inspection of a formula found: the dotted
// field paths it references and the functions it calls.
type analysis struct {
	identifiers []string
	functions   []string
}

// analyze parses a formula and collects its identifier and function
// references by walking the expr AST. Parse failures are returned as
// FormulaErrors carrying the source position.
func analyze(formula string) (*analysis, error) {
	tree, err := parser.Parse(formula)
	if err != nil {
		return nil, parseError(formula, err)
	}

	c := &collector{
		identifiers: make(map[string]bool),
		functions:   make(map[string]bool),
	}
	c.walk(tree.Node)

	return &analysis{
		identifiers: sortedKeys(c.identifiers),
		functions:   sortedKeys(c.functions),
	}, nil
}

// Identifiers returns the dotted field paths a formula references.
// Used by the compiler to check declared dependencies against actual use.
func Identifiers(formula string) ([]string, error) {
	a, err := analyze(formula)
	if err != nil {
		return nil, err
	}
	return a.identifiers, nil
}

// collector walks the expr AST gathering identifier chains and call names.
// Dotted references parse as member access (user.name is a MemberNode over
// an IdentifierNode), so member chains are flattened back into dotted paths
// before recording.
type collector struct {
	identifiers map[string]bool
	functions   map[string]bool
}

func (c *collector) walk(node ast.Node) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ConstantNode:
		// Literals reference nothing.
	case *ast.IdentifierNode:
		c.identifiers[n.Value] = true
	case *ast.MemberNode:
		if path, ok := memberPath(n); ok {
			c.identifiers[path] = true
			return
		}
		c.walk(n.Node)
		c.walk(n.Property)
	case *ast.ChainNode:
		c.walk(n.Node)
	case *ast.UnaryNode:
		c.walk(n.Node)
	case *ast.BinaryNode:
		c.walk(n.Left)
		c.walk(n.Right)
	case *ast.ConditionalNode:
		c.walk(n.Cond)
		c.walk(n.Exp1)
		c.walk(n.Exp2)
	case *ast.CallNode:
		if ident, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.functions[ident.Value] = true
		} else {
			c.walk(n.Callee)
		}
		for _, arg := range n.Arguments {
			c.walk(arg)
		}
	case *ast.ArrayNode:
		for _, child := range n.Nodes {
			c.walk(child)
		}
	case *ast.MapNode:
		for _, pair := range n.Pairs {
			c.walk(pair)
		}
	case *ast.PairNode:
		c.walk(n.Key)
		c.walk(n.Value)
	case *ast.SliceNode:
		c.walk(n.Node)
		c.walk(n.From)
		c.walk(n.To)
	default:
		// Unhandled node kinds fall back to the generic walker so future
		// grammar additions are still inspected.
		ast.Walk(&node, c)
	}
}

// Visit implements ast.Visitor for the generic-walker fallback.
func (c *collector) Visit(node *ast.Node) {
	if ident, ok := (*node).(*ast.IdentifierNode); ok {
		c.identifiers[ident.Value] = true
	}
}

// memberPath flattens a member-access chain rooted at an identifier into a
// dotted path. Non-literal properties (computed indexing) do not flatten.
func memberPath(node *ast.MemberNode) (string, bool) {
	prop, ok := node.Property.(*ast.StringNode)
	if !ok {
		return "", false
	}
	switch base := node.Node.(type) {
	case *ast.IdentifierNode:
		return base.Value + "." + prop.Value, true
	case *ast.MemberNode:
		prefix, ok := memberPath(base)
		if !ok {
			return "", false
		}
		return prefix + "." + prop.Value, true
	default:
		return "", false
	}
}

// parseError converts an expr parse failure into a FormulaError, keeping
// the source position when expr supplies one.
func parseError(formula string, err error) *FormulaError {
	ferr := &FormulaError{
		Formula: formula,
		Message: "parse error",
		Err:     err,
	}
	var fileErr *file.Error
	if errors.As(err, &fileErr) {
		ferr.Position = fmt.Sprintf("%d:%d", fileErr.Line, fileErr.Column)
		ferr.Message = fileErr.Message
	}
	return ferr
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
