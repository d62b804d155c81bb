package domain

import "strings"

// Outcome es uno de los dos lados de un contrato binario.
// El valor cero ("") significa "sin resolver".
type Outcome string

const (
	OutcomeYes Outcome = "yes"
	OutcomeNo  Outcome = "no"
)

// ParseOutcome interpreta la etiqueta que envía un caller ("yes" | "no").
// Cualquier otro valor es ErrMalformedOutcome.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(strings.ToLower(strings.TrimSpace(s))) {
	case OutcomeYes:
		return OutcomeYes, nil
	case OutcomeNo:
		return OutcomeNo, nil
	}
	return "", ErrMalformedOutcome
}

// Valid devuelve true si el outcome es Yes o No.
func (o Outcome) Valid() bool {
	return o == OutcomeYes || o == OutcomeNo
}

// Opposite devuelve el otro lado. Para un outcome inválido devuelve "".
func (o Outcome) Opposite() Outcome {
	switch o {
	case OutcomeYes:
		return OutcomeNo
	case OutcomeNo:
		return OutcomeYes
	}
	return ""
}

// OutcomeOf traduce el resultado de la comparación al lado ganador.
func OutcomeOf(holds bool) Outcome {
	if holds {
		return OutcomeYes
	}
	return OutcomeNo
}

// String devuelve la etiqueta tal y como se expone en las queries ("yes", "no" o "unset").
func (o Outcome) String() string {
	if o == "" {
		return "unset"
	}
	return string(o)
}
