package domain

import (
	"sort"
	"time"
)

// WinnerKey es la clave de app data con la que un flag sugiere el ganador.
const WinnerKey = "winner"

// MessageKind es la clasificación de un mensaje entrante.
type MessageKind string

const (
	KindDeposit MessageKind = "deposit"
	KindRedeem  MessageKind = "redeem"
	KindFlag    MessageKind = "flag"
	KindForeign MessageKind = "foreign"
)

// Transfer es un output de asset dirigido a la instancia.
type Transfer struct {
	Asset  AssetID `json:"asset" yaml:"asset"`
	Amount int64   `json:"amount" yaml:"amount"`
}

// Message es un mensaje entregado por el ledger a la instancia, ya estable.
type Message struct {
	ID        string
	Sender    string
	Transfers []Transfer
	Data      map[string]string
	Timestamp time.Time
}

// AmountOf suma lo enviado del asset dado.
func (m Message) AmountOf(asset AssetID) int64 {
	var total int64
	for _, t := range m.Transfers {
		if t.Asset == asset {
			total += t.Amount
		}
	}
	return total
}

// NonNativeAssets devuelve los assets distintos de la moneda nativa con importe
// positivo, ordenados. Los bytes nativos que acompañan a un token son el fee.
func (m Message) NonNativeAssets() []AssetID {
	seen := make(map[AssetID]struct{})
	var out []AssetID
	for _, t := range m.Transfers {
		if t.Asset == NativeAsset || t.Asset == "" || t.Amount <= 0 {
			continue
		}
		if _, ok := seen[t.Asset]; ok {
			continue
		}
		seen[t.Asset] = struct{}{}
		out = append(out, t.Asset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SuggestedWinner devuelve el valor crudo de data.winner, si viene.
func (m Message) SuggestedWinner() (string, bool) {
	v, ok := m.Data[WinnerKey]
	return v, ok
}
