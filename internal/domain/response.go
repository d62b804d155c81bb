package domain

import "time"

// EffectType es el tipo de efecto que el ledger debe aplicar tras aceptar un mensaje.
type EffectType string

const (
	EffectDefine EffectType = "define" // registro de un token nuevo del par
	EffectMint   EffectType = "mint"
	EffectBurn   EffectType = "burn"
	EffectPayout EffectType = "payout"
)

// Effect es un efecto observable de un mensaje aceptado.
type Effect struct {
	Type    EffectType `json:"type"`
	Asset   AssetID    `json:"asset"`
	Amount  int64      `json:"amount"`
	Address string     `json:"address,omitempty"`
}

// Response es el resultado de procesar un mensaje: aceptado con efectos,
// o rechazado sin mutación con un motivo legible por máquina.
type Response struct {
	MessageID   string
	Instance    string
	Sender      string
	Kind        MessageKind
	Accepted    bool
	Code        RejectCode
	Reason      string
	Winner      Outcome // ganador almacenado tras el mensaje
	Effects     []Effect
	ProcessedAt time.Time
}

// Bounced devuelve true si el mensaje fue rechazado (el ledger reembolsa).
func (r Response) Bounced() bool {
	return !r.Accepted
}

// Total suma el importe de los efectos del tipo dado.
func (r Response) Total(t EffectType) int64 {
	var total int64
	for _, e := range r.Effects {
		if e.Type == t {
			total += e.Amount
		}
	}
	return total
}

// Payout devuelve lo pagado en reserva por el mensaje.
func (r Response) Payout() int64 {
	return r.Total(EffectPayout)
}
