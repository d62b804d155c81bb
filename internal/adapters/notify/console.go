package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alejandrodnm/condtoken/internal/domain"
	"github.com/alejandrodnm/condtoken/internal/simulate"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime la respuesta a un mensaje: una línea, o tabla de efectos.
func (c *Console) Notify(_ context.Context, resp domain.Response) error {
	fmt.Fprintln(c.out, compactResponse(resp))
	if c.table && len(resp.Effects) > 0 {
		c.printEffects(resp.Effects)
	}
	return nil
}

// compactResponse resume una respuesta en una línea.
func compactResponse(resp domain.Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s %-7s from=%s",
		resp.ProcessedAt.Format("2006-01-02 15:04:05"), verdict(resp), resp.Kind, shortID(resp.Sender, 12))
	if !resp.Accepted {
		fmt.Fprintf(&sb, " reason=%q", resp.Reason)
	}
	fmt.Fprintf(&sb, " winner=%s", resp.Winner)
	if p := resp.Payout(); p > 0 {
		fmt.Fprintf(&sb, " payout=%d", p)
	}
	if m := resp.Total(domain.EffectMint); m > 0 {
		fmt.Fprintf(&sb, " minted=%d", m/2)
	}
	return sb.String()
}

func (c *Console) printEffects(effects []domain.Effect) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Effect", "Asset", "Amount", "Address")
	for _, e := range effects {
		table.Append(string(e.Type), shortID(string(e.Asset), 18), fmt.Sprintf("%d", e.Amount), e.Address)
	}
	table.Render()
}

// PrintState imprime los params y el estado actual de la instancia.
func (c *Console) PrintState(p domain.ContractParams, st domain.ContractState) {
	fmt.Fprintf(c.out, "\n=== INSTANCE %s ===\n", p.Address)
	fmt.Fprintf(c.out, "  condition: %s[%s] %s %s\n", p.FeedName, p.OracleID, p.Operator, p.Threshold.Raw)
	fmt.Fprintf(c.out, "  expiry:    %s\n", p.Expiry.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(c.out, "  reserve:   %s\n\n", p.Reserve())

	table := tablewriter.NewWriter(c.out)
	table.Header("Field", "Value")
	table.Append("yes_asset", orDash(string(st.YesAsset)))
	table.Append("no_asset", orDash(string(st.NoAsset)))
	table.Append("winner", st.Winner.String())
	table.Append("total_backing", fmt.Sprintf("%d", st.TotalBacking))
	table.Append("yes_supply", fmt.Sprintf("%d", st.YesSupply))
	table.Append("no_supply", fmt.Sprintf("%d", st.NoSupply))
	table.Render()
}

// PrintJournal imprime las últimas respuestas, la más reciente primero.
func (c *Console) PrintJournal(entries []domain.Response) {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "\n  Journal vacío.")
		return
	}
	fmt.Fprintf(c.out, "\n=== JOURNAL (%d) ===\n", len(entries))

	table := tablewriter.NewWriter(c.out)
	table.Header("Time", "Kind", "Sender", "Result", "Winner", "Payout")
	for _, r := range entries {
		table.Append(
			r.ProcessedAt.Format("2006-01-02 15:04:05"),
			string(r.Kind),
			shortID(r.Sender, 12),
			resultLabel(r),
			r.Winner.String(),
			fmt.Sprintf("%d", r.Payout()),
		)
	}
	table.Render()
}

// PrintReport imprime el resultado de un escenario paso a paso.
func (c *Console) PrintReport(r simulate.Report) {
	fmt.Fprintf(c.out, "\n=== SCENARIO %s ===\n", orDash(r.Name))
	fmt.Fprintf(c.out, "  instance: %s\n\n", r.Instance)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Time", "Action", "From", "Result", "Winner", "Payout", "Check")
	for _, s := range r.Steps {
		result, winner, payout := "-", "-", "-"
		if s.Response != nil {
			result = resultLabel(*s.Response)
			winner = s.Response.Winner.String()
			payout = fmt.Sprintf("%d", s.Response.Payout())
		}
		check := "ok"
		if !s.Passed() {
			check = "FAIL: " + strings.Join(s.Failures, "; ")
		}
		table.Append(
			fmt.Sprintf("%d", s.Index),
			s.At.Format("2006-01-02 15:04:05"),
			s.Action,
			orDash(s.From),
			result,
			winner,
			payout,
			check,
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "\n  Final: winner=%s backing=%d yes=%d no=%d\n",
		r.Final.Winner, r.Final.TotalBacking, r.Final.YesSupply, r.Final.NoSupply)
	c.PrintBalances(r.Balances, r.YesAsset, r.NoAsset)

	if failed := r.Failed(); failed > 0 {
		fmt.Fprintf(c.out, "\n  ⚠ %d/%d steps failed\n\n", failed, len(r.Steps))
		return
	}
	fmt.Fprintf(c.out, "\n  All %d steps passed\n\n", len(r.Steps))
}

// PrintBalances imprime los saldos del ledger, con alias para el par YES/NO.
func (c *Console) PrintBalances(balances map[string]map[domain.AssetID]int64, yes, no domain.AssetID) {
	if len(balances) == 0 {
		return
	}
	addrs := make([]string, 0, len(balances))
	for addr := range balances {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	table := tablewriter.NewWriter(c.out)
	table.Header("Address", "Asset", "Balance")
	for _, addr := range addrs {
		assets := make([]string, 0, len(balances[addr]))
		for a := range balances[addr] {
			assets = append(assets, string(a))
		}
		sort.Strings(assets)
		for _, a := range assets {
			label := a
			switch domain.AssetID(a) {
			case yes:
				label = "YES"
			case no:
				label = "NO"
			}
			table.Append(shortID(addr, 18), label, fmt.Sprintf("%d", balances[addr][domain.AssetID(a)]))
		}
	}
	table.Render()
}

func verdict(resp domain.Response) string {
	if resp.Accepted {
		return "ACCEPT"
	}
	return "REJECT"
}

func resultLabel(r domain.Response) string {
	if r.Accepted {
		return "accepted"
	}
	return "bounced: " + r.Reason
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// shortID acorta direcciones e ids largos para que quepan en una tabla.
func shortID(s string, n int) string {
	if len(s) <= n || n < 8 {
		return s
	}
	return s[:n-5] + "..." + s[len(s)-2:]
}
