// Package ledger simula el ledger de assets sobre el que viven las instancias:
// balances por dirección, supply de cada token del par y entrega de mensajes.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/alejandrodnm/condtoken/internal/domain"
)

var (
	// ErrInsufficientFunds indica que el emisor no tiene saldo para lo que envía.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	// ErrInvalidTransfer indica un output con importe no positivo.
	ErrInvalidTransfer = errors.New("ledger: invalid transfer")
)

// Handler procesa un mensaje ya debitado al emisor. *settlement.Instance lo implementa.
type Handler interface {
	Address() string
	Handle(ctx context.Context, msg domain.Message) (domain.Response, error)
}

// Memory es un ledger en memoria. Los mensajes se entregan de uno en uno:
// debito del emisor, entrega a la instancia y, según la respuesta, efectos
// aplicados o reembolso completo.
type Memory struct {
	mu       sync.Mutex
	balances map[string]map[domain.AssetID]int64
	supplies map[domain.AssetID]int64
}

// NewMemory crea un ledger vacío.
func NewMemory() *Memory {
	return &Memory{
		balances: make(map[string]map[domain.AssetID]int64),
		supplies: make(map[domain.AssetID]int64),
	}
}

// Credit da saldo a una dirección (faucet para simulación).
func (l *Memory) Credit(addr string, asset domain.AssetID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("ledger.Credit: amount must be > 0, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.add(addr, asset, amount)
	return nil
}

// Balance devuelve el saldo de addr en asset.
func (l *Memory) Balance(addr string, asset domain.AssetID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr][asset]
}

// Balances devuelve una copia de todos los saldos distintos de cero de addr.
func (l *Memory) Balances(addr string) map[domain.AssetID]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[domain.AssetID]int64, len(l.balances[addr]))
	for a, v := range l.balances[addr] {
		if v != 0 {
			out[a] = v
		}
	}
	return out
}

// Accounts devuelve las direcciones conocidas, ordenadas.
func (l *Memory) Accounts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.balances))
	for addr := range l.balances {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Supply devuelve el supply en circulación de un token emitido por una instancia.
func (l *Memory) Supply(asset domain.AssetID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supplies[asset]
}

// Submit envía msg a la instancia h. Sender y Transfers salen de msg.
// Un rechazo de la instancia reembolsa lo enviado; un error también.
func (l *Memory) Submit(ctx context.Context, h Handler, msg domain.Message) (domain.Response, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	instance := h.Address()
	if err := l.debit(msg.Sender, msg.Transfers); err != nil {
		return domain.Response{}, fmt.Errorf("ledger.Submit: %w", err)
	}
	for _, t := range msg.Transfers {
		l.add(instance, t.Asset, t.Amount)
	}

	resp, err := h.Handle(ctx, msg)
	if err != nil || resp.Bounced() {
		l.refund(instance, msg.Sender, msg.Transfers)
		if err != nil {
			return domain.Response{}, fmt.Errorf("ledger.Submit: %w", err)
		}
		return resp, nil
	}

	if err := l.apply(instance, resp.Effects); err != nil {
		return resp, fmt.Errorf("ledger.Submit: apply effects of %s: %w", resp.MessageID, err)
	}
	return resp, nil
}

// --- helpers internos (con el lock tomado) ---

func (l *Memory) add(addr string, asset domain.AssetID, amount int64) {
	if asset == "" {
		asset = domain.NativeAsset
	}
	acc, ok := l.balances[addr]
	if !ok {
		acc = make(map[domain.AssetID]int64)
		l.balances[addr] = acc
	}
	acc[asset] += amount
}

func (l *Memory) debit(addr string, transfers []domain.Transfer) error {
	need := make(map[domain.AssetID]int64)
	for _, t := range transfers {
		if t.Amount <= 0 {
			return fmt.Errorf("%w: %s amount must be > 0, got %d", ErrInvalidTransfer, t.Asset, t.Amount)
		}
		asset := t.Asset
		if asset == "" {
			asset = domain.NativeAsset
		}
		need[asset] += t.Amount
	}
	for asset, amount := range need {
		if l.balances[addr][asset] < amount {
			return fmt.Errorf("%w: %s has %d %s, needs %d", ErrInsufficientFunds, addr, l.balances[addr][asset], asset, amount)
		}
	}
	for asset, amount := range need {
		l.add(addr, asset, -amount)
	}
	return nil
}

func (l *Memory) refund(instance, sender string, transfers []domain.Transfer) {
	for _, t := range transfers {
		l.add(instance, t.Asset, -t.Amount)
		l.add(sender, t.Asset, t.Amount)
	}
}

func (l *Memory) apply(instance string, effects []domain.Effect) error {
	for _, e := range effects {
		switch e.Type {
		case domain.EffectDefine:
			if _, ok := l.supplies[e.Asset]; !ok {
				l.supplies[e.Asset] = 0
			}
		case domain.EffectMint:
			l.supplies[e.Asset] += e.Amount
			l.add(e.Address, e.Asset, e.Amount)
		case domain.EffectBurn:
			if l.balances[instance][e.Asset] < e.Amount {
				return fmt.Errorf("%w: burn %d %s", ErrInsufficientFunds, e.Amount, e.Asset)
			}
			l.supplies[e.Asset] -= e.Amount
			l.add(instance, e.Asset, -e.Amount)
		case domain.EffectPayout:
			if l.balances[instance][e.Asset] < e.Amount {
				return fmt.Errorf("%w: payout %d %s", ErrInsufficientFunds, e.Amount, e.Asset)
			}
			l.add(instance, e.Asset, -e.Amount)
			l.add(e.Address, e.Asset, e.Amount)
		default:
			return fmt.Errorf("unknown effect %q", e.Type)
		}
	}
	return nil
}
