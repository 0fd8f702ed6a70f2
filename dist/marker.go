package dist

import (
	"fmt"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/weberc2/piprules/core"
)

// Marker is a parsed PEP 508 environment marker, e.g.
// `python_version < "3.8" and extra == "socks"`.
type Marker struct {
	text string
	expr markerExpr
}

func (m *Marker) String() string { return m.text }

// Evaluate reports whether the marker holds in env. A nil env stands for an
// unknown interpreter: every comparison against an environment variable
// other than `extra` is taken to hold, and `extra` is always empty.
func (m *Marker) Evaluate(env *Environment) bool { return m.expr.eval(env) }

type InvalidMarkerErr struct {
	Marker string
	Reason string
}

func (err InvalidMarkerErr) Error() string {
	return fmt.Sprintf("Invalid marker '%s': %s", err.Marker, err.Reason)
}

func ParseMarker(s string) (*Marker, error) {
	tokens, err := tokenizeMarker(s)
	if err != nil {
		return nil, err
	}
	p := markerParser{text: s, tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, InvalidMarkerErr{s, fmt.Sprintf("unexpected '%s'", p.tokens[p.pos].text)}
	}
	return &Marker{text: strings.TrimSpace(s), expr: expr}, nil
}

type markerExpr interface {
	eval(env *Environment) bool
}

type markerOr struct{ left, right markerExpr }

func (e markerOr) eval(env *Environment) bool { return e.left.eval(env) || e.right.eval(env) }

type markerAnd struct{ left, right markerExpr }

func (e markerAnd) eval(env *Environment) bool { return e.left.eval(env) && e.right.eval(env) }

type markerValue struct {
	variable string
	literal  string
}

func (v markerValue) resolve(env *Environment) (string, bool) {
	switch {
	case v.variable == "":
		return v.literal, true
	case v.variable == "extra":
		if env == nil {
			return "", true
		}
		return env.Extra, true
	case env == nil:
		return "", false
	}
	return env.lookup(v.variable), true
}

type markerCompare struct {
	lhs markerValue
	op  string
	rhs markerValue
}

func (e markerCompare) eval(env *Environment) bool {
	lhs, lok := e.lhs.resolve(env)
	rhs, rok := e.rhs.resolve(env)
	if !lok || !rok {
		return true
	}
	if e.lhs.variable == "extra" || e.rhs.variable == "extra" {
		lhs, rhs = core.NormalizeName(lhs), core.NormalizeName(rhs)
	}
	return compareMarkerValues(lhs, e.op, rhs)
}

func compareMarkerValues(lhs, op, rhs string) bool {
	switch op {
	case "in":
		return strings.Contains(rhs, lhs)
	case "not in":
		return !strings.Contains(rhs, lhs)
	case "===":
		return lhs == rhs
	}

	if lv, err := pep440.Parse(lhs); err == nil {
		if c, ok := compareVersions(lv, op, rhs); ok {
			return c
		}
	}

	switch op {
	case "==":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	}
	return false
}

// compareVersions compares lhs against the version rhs under PEP 440
// ordering. Pre-, post- and dev-release segments take part in the ordering.
// ok is false when rhs is not a version.
func compareVersions(lhs pep440.Version, op, rhs string) (result bool, ok bool) {
	// `~=` and `== 3.*` prefix matches need the specifier grammar.
	if op == "~=" || strings.HasSuffix(rhs, ".*") {
		specifiers, err := pep440.NewSpecifiers(op + rhs)
		if err != nil {
			return false, false
		}
		return specifiers.Check(lhs), true
	}

	rv, err := pep440.Parse(rhs)
	if err != nil {
		return false, false
	}
	c := lhs.Compare(rv)
	switch op {
	case "==":
		return c == 0, true
	case "!=":
		return c != 0, true
	case "<":
		return c < 0, true
	case "<=":
		return c <= 0, true
	case ">":
		return c > 0, true
	case ">=":
		return c >= 0, true
	}
	return false, false
}

type markerTokenKind int

const (
	tokenString markerTokenKind = iota
	tokenVariable
	tokenOp
	tokenAnd
	tokenOr
	tokenLParen
	tokenRParen
)

type markerToken struct {
	kind markerTokenKind
	text string
}

// Older metadata uses dotted names for some variables.
var markerVariableAliases = map[string]string{
	"os.name":                         "os_name",
	"sys.platform":                    "sys_platform",
	"platform.machine":                "platform_machine",
	"platform.python_implementation": "platform_python_implementation",
	"platform.version":                "platform_version",
	"python_implementation":           "platform_python_implementation",
}

var markerOps = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func tokenizeMarker(s string) ([]markerToken, error) {
	var tokens []markerToken
	i := 0
NEXT:
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, markerToken{tokenLParen, "("})
			i++
		case c == ')':
			tokens = append(tokens, markerToken{tokenRParen, ")"})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, InvalidMarkerErr{s, "unterminated string"}
			}
			tokens = append(tokens, markerToken{tokenString, s[i+1 : i+1+end]})
			i += end + 2
		case isWordByte(c):
			start := i
			for i < len(s) && isWordByte(s[i]) {
				i++
			}
			word := s[start:i]
			switch word {
			case "and":
				tokens = append(tokens, markerToken{tokenAnd, word})
			case "or":
				tokens = append(tokens, markerToken{tokenOr, word})
			case "in":
				tokens = append(tokens, markerToken{tokenOp, word})
			case "not":
				rest := strings.TrimLeft(s[i:], " \t")
				if !strings.HasPrefix(rest, "in") ||
					(len(rest) > 2 && isWordByte(rest[2])) {
					return nil, InvalidMarkerErr{s, "expected 'in' after 'not'"}
				}
				i = len(s) - len(rest) + 2
				tokens = append(tokens, markerToken{tokenOp, "not in"})
			default:
				if alias, found := markerVariableAliases[word]; found {
					word = alias
				}
				if !isMarkerVariable(word) {
					return nil, InvalidMarkerErr{s, fmt.Sprintf("unknown variable '%s'", word)}
				}
				tokens = append(tokens, markerToken{tokenVariable, word})
			}
		default:
			for _, op := range markerOps {
				if strings.HasPrefix(s[i:], op) {
					tokens = append(tokens, markerToken{tokenOp, op})
					i += len(op)
					continue NEXT
				}
			}
			return nil, InvalidMarkerErr{s, fmt.Sprintf("unexpected character '%c'", c)}
		}
	}
	return tokens, nil
}

type markerParser struct {
	text   string
	tokens []markerToken
	pos    int
}

func (p *markerParser) peek() (markerToken, bool) {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos], true
	}
	return markerToken{}, false
}

func (p *markerParser) parseOr() (markerExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = markerOr{left, right}
	}
}

func (p *markerParser) parseAnd() (markerExpr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = markerAnd{left, right}
	}
}

func (p *markerParser) parseAtom() (markerExpr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, InvalidMarkerErr{p.text, "unexpected end of marker"}
	}
	if tok.kind == tokenLParen {
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if tok, ok := p.peek(); !ok || tok.kind != tokenRParen {
			return nil, InvalidMarkerErr{p.text, "missing ')'"}
		}
		p.pos++
		return expr, nil
	}

	lhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	op, ok := p.peek()
	if !ok || op.kind != tokenOp {
		return nil, InvalidMarkerErr{p.text, "expected comparison operator"}
	}
	p.pos++
	rhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return markerCompare{lhs: lhs, op: op.text, rhs: rhs}, nil
}

func (p *markerParser) parseValue() (markerValue, error) {
	tok, ok := p.peek()
	if !ok {
		return markerValue{}, InvalidMarkerErr{p.text, "unexpected end of marker"}
	}
	p.pos++
	switch tok.kind {
	case tokenString:
		return markerValue{literal: tok.text}, nil
	case tokenVariable:
		return markerValue{variable: tok.text}, nil
	}
	return markerValue{}, InvalidMarkerErr{p.text, fmt.Sprintf("unexpected '%s'", tok.text)}
}
