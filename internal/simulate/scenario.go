// Package simulate ejecuta escenarios YAML contra una instancia real sobre
// SQLite y un ledger en memoria, y compara cada respuesta con lo esperado.
package simulate

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/condtoken/config"
	"github.com/alejandrodnm/condtoken/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFaucet es el saldo nativo que recibe cada emisor cuando el escenario
// no declara cuentas.
const DefaultFaucet = 1_000_000_000

// defaultStart es el reloj inicial si el escenario no fija start.
var defaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Acciones soportadas por un paso.
const (
	ActionDeposit  = "deposit"
	ActionRedeem   = "redeem"
	ActionFlag     = "flag"
	ActionSend     = "send"
	ActionPostFeed = "post_feed"
	ActionAdvance  = "advance"
	ActionAt       = "at"
)

// Scenario es un guion completo: params, políticas, cuentas y pasos.
type Scenario struct {
	Name       string                      `yaml:"name"`
	Start      string                      `yaml:"start"` // RFC3339
	Contract   config.ContractConfig       `yaml:"contract"`
	Settlement config.SettlementConfig     `yaml:"settlement"`
	Accounts   map[string]map[string]int64 `yaml:"accounts"` // addr -> asset -> saldo
	Steps      []Step                      `yaml:"steps"`
}

// Step es una acción del escenario. Qué campos cuentan depende de Action.
type Step struct {
	Action    string            `yaml:"action"`
	From      string            `yaml:"from"`
	Amount    int64             `yaml:"amount"`
	Asset     string            `yaml:"asset"`     // deposit: por defecto la reserva
	Side      string            `yaml:"side"`      // redeem: yes | no
	Winner    string            `yaml:"winner"`    // flag
	Transfers []domain.Transfer `yaml:"transfers"` // send
	Data      map[string]string `yaml:"data"`      // send
	Feed      string            `yaml:"feed"`      // post_feed: por defecto el del contrato
	Value     string            `yaml:"value"`     // post_feed
	Duration  string            `yaml:"duration"`  // advance: 90s, 2h, 10d
	Time      string            `yaml:"time"`      // at: RFC3339 o YYYY-MM-DD
	Expect    *Expect           `yaml:"expect"`
}

// Expect son las comprobaciones opcionales sobre la respuesta de un paso.
type Expect struct {
	Accepted *bool  `yaml:"accepted"`
	Reason   string `yaml:"reason"`
	Winner   string `yaml:"winner"` // yes | no | unset
	Payout   *int64 `yaml:"payout"`
}

// Load lee un escenario desde un archivo YAML.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simulate.Load: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse interpreta un escenario YAML y valida las acciones.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("simulate.Parse: %w", err)
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case ActionDeposit, ActionRedeem, ActionFlag, ActionSend, ActionPostFeed:
		case ActionAdvance:
			if _, err := parseDuration(st.Duration); err != nil {
				return nil, fmt.Errorf("simulate.Parse: step %d: %w", i+1, err)
			}
		case ActionAt:
			if _, err := domain.ParseExpiry(st.Time); err != nil {
				return nil, fmt.Errorf("simulate.Parse: step %d: %w", i+1, err)
			}
		default:
			return nil, fmt.Errorf("simulate.Parse: step %d: unknown action %q", i+1, st.Action)
		}
	}
	return &sc, nil
}

// StartTime devuelve el reloj inicial del escenario.
func (sc *Scenario) StartTime() (time.Time, error) {
	if sc.Start == "" {
		return defaultStart, nil
	}
	t, err := domain.ParseExpiry(sc.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("simulate: start: %w", err)
	}
	return t, nil
}

// parseDuration acepta lo mismo que time.ParseDuration más días enteros ("10d").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("duration %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	return d, nil
}
