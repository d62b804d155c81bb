package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Operator es el operador de comparación configurado en el contrato.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
)

// ParseOperator valida uno de los seis operadores soportados.
// Acepta "==" como alias de "=".
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.TrimSpace(s))
	if op == "==" {
		op = OpEqual
	}
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual, OpNotEqual:
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

// IsOrdering devuelve true para >, >=, < y <=, que solo tienen sentido con números.
func (op Operator) IsOrdering() bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return true
	}
	return false
}

// Value es un valor de feed o threshold: número o texto, nunca coerción implícita.
type Value struct {
	Raw     string
	Number  decimal.Decimal
	Numeric bool
}

// ParseValue clasifica el string: si parsea como decimal es Number, si no Text.
func ParseValue(raw string) Value {
	d, err := decimal.NewFromString(raw)
	if err != nil || strings.TrimSpace(raw) != raw {
		return Value{Raw: raw}
	}
	return Value{Raw: raw, Number: d, Numeric: true}
}

// Compare evalúa `observed op threshold`.
//
// Si ambos valores son numéricos compara como decimales exactos ("1.20" = "1.2").
// Si no, solo = y != tienen sentido y se compara el texto literal. Un operador
// de orden con algún operando no numérico devuelve ErrNotComparable.
func Compare(observed Value, op Operator, threshold Value) (bool, error) {
	if observed.Numeric && threshold.Numeric {
		c := observed.Number.Cmp(threshold.Number)
		switch op {
		case OpGreater:
			return c > 0, nil
		case OpGreaterEqual:
			return c >= 0, nil
		case OpLess:
			return c < 0, nil
		case OpLessEqual:
			return c <= 0, nil
		case OpEqual:
			return c == 0, nil
		case OpNotEqual:
			return c != 0, nil
		}
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}

	switch op {
	case OpEqual:
		return observed.Raw == threshold.Raw, nil
	case OpNotEqual:
		return observed.Raw != threshold.Raw, nil
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return false, fmt.Errorf("%w: %q %s %q", ErrNotComparable, observed.Raw, op, threshold.Raw)
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
}
