package pivot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// ARITHMETIC EVALUATOR — Restricted Grammar, No Host Eval
// ============================================================================
// Formulas are reduced to pure arithmetic before they reach this file:
// substitution replaces every field/aggregate reference with its numeric
// value. What remains must pass the character whitelist, then a small
// recursive-descent parser evaluates it.
//
// Grammar:
//   expr   := term (('+' | '-') term)*
//   term   := factor (('*' | '/') factor)*
//   factor := number | '(' expr ')' | ('+' | '-') factor
//
// Multi-statement input, identifiers, and anything outside the whitelist
// never parse. This is deliberately not a scripting language.
// ============================================================================

var errBadExpression = errors.New("pivot: invalid arithmetic expression")

// isSafeExpression reports whether a substituted expression contains only
// whitelisted characters: digits, whitespace, '.', '+', '-', '*', '/', '(' and ')'.
func isSafeExpression(expr string) bool {
	for _, r := range expr {
		switch {
		case r >= '0' && r <= '9':
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		case r == '.' || r == '+' || r == '-' || r == '*' || r == '/':
		case r == '(' || r == ')':
		default:
			return false
		}
	}
	return true
}

// evalArithmetic checks the whitelist and evaluates the expression.
// Division by zero yields ±Inf, which callers reject as non-finite.
func evalArithmetic(expr string) (float64, error) {
	if !isSafeExpression(expr) {
		return 0, errBadExpression
	}

	p := &exprParser{input: expr}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("%w: trailing input at offset %d", errBadExpression, p.pos)
	}
	return v, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *exprParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			v *= rhs
		} else {
			v /= rhs
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '+':
		p.pos++
		return p.parseFactor()
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", errBadExpression)
		}
		p.pos++
		return v, nil
	default:
		return p.parseNumber()
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, fmt.Errorf("%w: expected number at offset %d", errBadExpression, start)
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadExpression, p.input[start:p.pos])
	}
	return v, nil
}

// formatOperand renders a substituted numeric value so it survives the
// whitelist. Negative values are parenthesized to keep operator sequences
// like "* -3" out of the expression text.
func formatOperand(v float64) string {
	if math.Signbit(v) {
		return "(0" + strconv.FormatFloat(v, 'f', -1, 64) + ")"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// containsStatementBreak rejects anything that smells like multiple statements.
func containsStatementBreak(formula string) bool {
	return strings.ContainsAny(formula, ";\n")
}
