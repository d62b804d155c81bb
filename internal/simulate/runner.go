package simulate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/condtoken/internal/adapters/ledger"
	"github.com/alejandrodnm/condtoken/internal/adapters/storage"
	"github.com/alejandrodnm/condtoken/internal/application/settlement"
	"github.com/alejandrodnm/condtoken/internal/domain"
)

// StepResult es el resultado de un paso del escenario.
type StepResult struct {
	Index    int
	Action   string
	From     string
	At       time.Time
	Response *domain.Response // nil en pasos sin mensaje
	Failures []string
}

// Passed devuelve true si el paso cumplió todas sus expectativas.
func (r StepResult) Passed() bool {
	return len(r.Failures) == 0
}

// Report resume una ejecución completa.
type Report struct {
	Name     string
	Instance string
	YesAsset domain.AssetID
	NoAsset  domain.AssetID
	Steps    []StepResult
	Final    domain.ContractState
	Balances map[string]map[domain.AssetID]int64
}

// Failed devuelve cuántos pasos fallaron.
func (r Report) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if !s.Passed() {
			n++
		}
	}
	return n
}

// Runner ejecuta escenarios. DSN es la base SQLite a usar; ":memory:" por defecto.
type Runner struct {
	DSN string
}

// NewRunner crea un runner sobre una base SQLite en memoria.
func NewRunner() *Runner {
	return &Runner{DSN: ":memory:"}
}

// run lleva el reloj y las piezas de una ejecución.
type run struct {
	sc     *Scenario
	params domain.ContractParams
	store  *storage.SQLiteStorage
	inst   *settlement.Instance
	ledger *ledger.Memory
	now    time.Time
}

// Run ejecuta sc de principio a fin. Un error solo indica que el escenario no
// pudo montarse; los fallos de expectativas van en el Report.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (Report, error) {
	params, err := sc.Contract.Params()
	if err != nil {
		return Report{}, fmt.Errorf("simulate.Run: %w", err)
	}
	policy, err := sc.Settlement.Policy()
	if err != nil {
		return Report{}, fmt.Errorf("simulate.Run: %w", err)
	}
	start, err := sc.StartTime()
	if err != nil {
		return Report{}, fmt.Errorf("simulate.Run: %w", err)
	}

	dsn := r.DSN
	if dsn == "" {
		dsn = ":memory:"
	}
	store, err := storage.NewSQLiteStorage(dsn)
	if err != nil {
		return Report{}, fmt.Errorf("simulate.Run: %w", err)
	}
	defer store.Close()

	inst, err := settlement.New(ctx, params, policy, store, store)
	if err != nil {
		return Report{}, fmt.Errorf("simulate.Run: %w", err)
	}

	rn := &run{sc: sc, params: inst.Params(), store: store, inst: inst, ledger: ledger.NewMemory(), now: start}
	if err := rn.fund(); err != nil {
		return Report{}, fmt.Errorf("simulate.Run: %w", err)
	}

	slog.Info("simulate: scenario starting",
		"name", sc.Name, "instance", inst.Address(), "steps", len(sc.Steps), "start", start)

	report := Report{Name: sc.Name, Instance: inst.Address()}
	for i, step := range sc.Steps {
		res, err := rn.step(ctx, step)
		if err != nil {
			return report, fmt.Errorf("simulate.Run: step %d (%s): %w", i+1, step.Action, err)
		}
		res.Index = i + 1
		report.Steps = append(report.Steps, res)
	}

	report.Final = inst.State()
	report.YesAsset = report.Final.YesAsset
	report.NoAsset = report.Final.NoAsset
	report.Balances = make(map[string]map[domain.AssetID]int64)
	for _, addr := range rn.ledger.Accounts() {
		report.Balances[addr] = rn.ledger.Balances(addr)
	}

	slog.Info("simulate: scenario finished",
		"name", sc.Name, "failed", report.Failed(), "winner", report.Final.Winner.String())
	return report, nil
}

// fund carga las cuentas declaradas o, si no hay, da DefaultFaucet de moneda
// nativa y de la reserva a cada emisor.
func (rn *run) fund() error {
	if len(rn.sc.Accounts) > 0 {
		addrs := make([]string, 0, len(rn.sc.Accounts))
		for addr := range rn.sc.Accounts {
			addrs = append(addrs, addr)
		}
		sort.Strings(addrs)
		for _, addr := range addrs {
			for asset, amount := range rn.sc.Accounts[addr] {
				if err := rn.ledger.Credit(addr, domain.AssetID(asset), amount); err != nil {
					return fmt.Errorf("fund %s: %w", addr, err)
				}
			}
		}
		return nil
	}
	seen := make(map[string]bool)
	for _, st := range rn.sc.Steps {
		if st.From == "" || seen[st.From] {
			continue
		}
		seen[st.From] = true
		if err := rn.ledger.Credit(st.From, domain.NativeAsset, DefaultFaucet); err != nil {
			return fmt.Errorf("fund %s: %w", st.From, err)
		}
		if !rn.params.ReserveIsNative() {
			if err := rn.ledger.Credit(st.From, rn.params.Reserve(), DefaultFaucet); err != nil {
				return fmt.Errorf("fund %s: %w", st.From, err)
			}
		}
	}
	return nil
}

// step ejecuta un paso. Los pasos con mensaje y post_feed avanzan el reloj un
// segundo, así cada mensaje ve lo publicado antes que él.
func (rn *run) step(ctx context.Context, st Step) (StepResult, error) {
	res := StepResult{Action: st.Action, From: st.From, At: rn.now}

	switch st.Action {
	case ActionAdvance:
		d, err := parseDuration(st.Duration)
		if err != nil {
			return res, err
		}
		rn.now = rn.now.Add(d)
		res.At = rn.now
		return res, nil

	case ActionAt:
		t, err := domain.ParseExpiry(st.Time)
		if err != nil {
			return res, err
		}
		rn.now = t
		res.At = rn.now
		return res, nil

	case ActionPostFeed:
		feed := st.Feed
		if feed == "" {
			feed = rn.params.FeedName
		}
		if err := rn.store.PostFeed(ctx, rn.params.OracleID, feed, st.Value, rn.now); err != nil {
			return res, err
		}
		rn.now = rn.now.Add(time.Second)
		return res, nil
	}

	msg, ok := rn.message(st, &res)
	if !ok {
		rn.now = rn.now.Add(time.Second)
		return res, nil
	}

	resp, err := rn.ledger.Submit(ctx, rn.inst, msg)
	rn.now = rn.now.Add(time.Second)
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, ledger.ErrInvalidTransfer):
		// El ledger no entrega el mensaje: la instancia no lo ve.
		res.Failures = append(res.Failures, err.Error())
		return res, nil
	case err != nil:
		return res, err
	}
	res.Response = &resp
	res.Failures = append(res.Failures, check(st.Expect, resp)...)
	res.Failures = append(res.Failures, rn.audit()...)
	return res, nil
}

// message construye el mensaje de un paso. ok=false si no se pudo, con el
// motivo en res.Failures.
func (rn *run) message(st Step, res *StepResult) (domain.Message, bool) {
	msg := domain.Message{Sender: st.From, Timestamp: rn.now}
	switch st.Action {
	case ActionDeposit:
		asset := domain.AssetID(st.Asset)
		if asset == "" {
			asset = rn.params.Reserve()
		}
		msg.Transfers = []domain.Transfer{{Asset: asset, Amount: st.Amount}}

	case ActionRedeem:
		side, err := domain.ParseOutcome(st.Side)
		if err != nil {
			res.Failures = append(res.Failures, fmt.Sprintf("redeem side: %v", err))
			return msg, false
		}
		asset := rn.inst.State().AssetOf(side)
		if asset == "" {
			res.Failures = append(res.Failures, "redeem: token pair not defined yet")
			return msg, false
		}
		msg.Transfers = []domain.Transfer{{Asset: asset, Amount: st.Amount}}

	case ActionFlag:
		msg.Data = map[string]string{domain.WinnerKey: st.Winner}
		if st.Amount > 0 {
			msg.Transfers = []domain.Transfer{{Asset: domain.NativeAsset, Amount: st.Amount}}
		}

	case ActionSend:
		// $yes y $no se sustituyen por los tokens del par.
		current := rn.inst.State()
		for _, t := range st.Transfers {
			switch t.Asset {
			case "$yes":
				t.Asset = current.YesAsset
			case "$no":
				t.Asset = current.NoAsset
			}
			msg.Transfers = append(msg.Transfers, t)
		}
		msg.Data = st.Data
	}
	return msg, true
}

// audit compara los supplies del ledger con los del estado.
func (rn *run) audit() []string {
	st := rn.inst.State()
	if !st.HasPair() {
		return nil
	}
	var out []string
	if got := rn.ledger.Supply(st.YesAsset); got != st.YesSupply {
		out = append(out, fmt.Sprintf("ledger yes supply %d != state %d", got, st.YesSupply))
	}
	if got := rn.ledger.Supply(st.NoAsset); got != st.NoSupply {
		out = append(out, fmt.Sprintf("ledger no supply %d != state %d", got, st.NoSupply))
	}
	if err := st.CheckConservation(); err != nil {
		out = append(out, err.Error())
	}
	return out
}

func check(exp *Expect, resp domain.Response) []string {
	if exp == nil {
		return nil
	}
	var out []string
	if exp.Accepted != nil && *exp.Accepted != resp.Accepted {
		out = append(out, fmt.Sprintf("accepted: want %t, got %t (%s)", *exp.Accepted, resp.Accepted, resp.Reason))
	}
	if exp.Reason != "" && exp.Reason != resp.Reason {
		out = append(out, fmt.Sprintf("reason: want %q, got %q", exp.Reason, resp.Reason))
	}
	if exp.Winner != "" && exp.Winner != resp.Winner.String() {
		out = append(out, fmt.Sprintf("winner: want %s, got %s", exp.Winner, resp.Winner))
	}
	if exp.Payout != nil && *exp.Payout != resp.Payout() {
		out = append(out, fmt.Sprintf("payout: want %d, got %d", *exp.Payout, resp.Payout()))
	}
	return out
}
