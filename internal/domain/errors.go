package domain

import "errors"

// RejectCode es el código estable de una rejection.
type RejectCode string

const (
	CodeForeignAsset     RejectCode = "FOREIGN_ASSET"
	CodeOutcomeMismatch  RejectCode = "OUTCOME_MISMATCH"
	CodeMalformedOutcome RejectCode = "MALFORMED_OUTCOME"
	CodeInvalidAmount    RejectCode = "INVALID_AMOUNT"
)

// Rejection es un rechazo local de un mensaje: no muta estado y los assets
// adjuntos vuelven al sender por convención del ledger.
type Rejection struct {
	Code    RejectCode
	Message string
}

func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	return r.Message
}

// Is compara por código, así errors.Is(err, ErrOutcomeMismatch) funciona
// también con rejections construidas en otro sitio.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && r != nil && t.Code == r.Code
}

var (
	ErrForeignAsset     = &Rejection{Code: CodeForeignAsset, Message: "foreign asset"}
	ErrOutcomeMismatch  = &Rejection{Code: CodeOutcomeMismatch, Message: "suggested outcome not confirmed"}
	ErrMalformedOutcome = &Rejection{Code: CodeMalformedOutcome, Message: "wrong suggested outcome"}
	ErrInvalidAmount    = &Rejection{Code: CodeInvalidAmount, Message: "invalid amount"}
)

// Errores de configuración: nunca llegan a runtime con params validados.
var (
	ErrInvalidParams   = errors.New("invalid contract params")
	ErrNotComparable   = errors.New("ordering comparison on non-numeric value")
	ErrUnknownOperator = errors.New("unknown comparison operator")
)

// AsRejection extrae la Rejection de la cadena de errores, si la hay.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
