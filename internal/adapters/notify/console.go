package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/alejandrodnm/trendbot/internal/backtest"
	"github.com/alejandrodnm/trendbot/internal/domain"
	"github.com/alejandrodnm/trendbot/internal/ports"
	"github.com/olekukonko/tablewriter"
)

var _ ports.Notifier = (*Console)(nil)

// Console implementa ports.Notifier.
type Console struct {
	out    io.Writer
	table  bool // tabla completa + trades; si no, resumen compacto de 1 línea
	trades int  // máximo de trades a listar en modo tabla
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table, trades: 20}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table, trades: 20}
}

// NotifySelection imprime el resultado del run en el modo configurado.
func (c *Console) NotifySelection(_ context.Context, ticker string, sel *backtest.Selection) error {
	if sel == nil || sel.Final == nil {
		fmt.Fprintf(c.out, "[%s] no backtest result\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(ticker, sel)
	} else {
		c.printCompact(ticker, sel)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(ticker string, sel *backtest.Selection) {
	s := sel.Final.StrategySummary
	b := sel.Final.BenchmarkSummary
	fmt.Fprintf(c.out, "[%s] %s cfg{%s} eq:%.2fx cagr:%.1f%% sharpe:%.2f dd:%.1f%% | b&h eq:%.2fx sharpe:%.2f | val:%s test:%.2f\n",
		time.Now().Format("15:04:05"), ticker, sel.Best,
		s.EquityEnd, s.CAGR*100, s.Sharpe, s.MaxDrawdown*100,
		b.EquityEnd, b.Sharpe,
		sharpeLabel(validationSharpe(sel)), sel.TestSharpe)
}

// printFull imprime las tablas completas: performance, sensibilidad y trades.
func (c *Console) printFull(ticker string, sel *backtest.Selection) {
	out := sel.Final
	fmt.Fprintf(c.out, "\n=== %s — selected config: %s ===\n", ticker, sel.Best)
	if out.Rating.Rating != "" {
		asOf := "whole sample"
		if !out.Rating.AsOf.IsZero() {
			asOf = "from " + out.Rating.AsOf.Format("2006-01-02")
		}
		fmt.Fprintf(c.out, "fundamental overlay: %s (%s)\n", out.Rating.Rating, asOf)
	}
	fmt.Fprintf(c.out, "validation sharpe: %s | test sharpe (out-of-sample): %.2f\n\n",
		sharpeLabel(validationSharpe(sel)), sel.TestSharpe)

	c.printPerformance(out.StrategySummary, out.BenchmarkSummary)
	if len(sel.Candidates) > 0 {
		c.printSensitivity(sel)
	}
	c.printTrades(out.Trades)
}

// printPerformance imprime estrategia vs benchmark bajo contabilidad idéntica.
func (c *Console) printPerformance(s, b domain.PerformanceSummary) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Strategy", "Buy & Hold")

	row := func(name, sv, bv string) { table.Append(name, sv, bv) }
	row("Equity multiple", fmt.Sprintf("%.2fx", s.EquityEnd), fmt.Sprintf("%.2fx", b.EquityEnd))
	row("Total return", pctLabel(s.TotalReturn), pctLabel(b.TotalReturn))
	row("CAGR", pctLabel(s.CAGR), pctLabel(b.CAGR))
	row("Sharpe", fmt.Sprintf("%.2f", s.Sharpe), fmt.Sprintf("%.2f", b.Sharpe))
	row("Annual vol", pctLabel(s.AnnualVol), pctLabel(b.AnnualVol))
	row("Max drawdown", pctLabel(s.MaxDrawdown), pctLabel(b.MaxDrawdown))
	row("Hit rate", ratioLabel(s.HitRate), ratioLabel(b.HitRate))
	row("Trades", fmt.Sprintf("%d", s.NumTrades), fmt.Sprintf("%d", b.NumTrades))
	row("Avg holding days", floatLabel(s.AvgHoldingDays), floatLabel(b.AvgHoldingDays))
	row("Exposure", ratioLabel(s.Exposure), ratioLabel(b.Exposure))
	row("Turnover (sum)", fmt.Sprintf("%.1f", s.TurnoverSum), fmt.Sprintf("%.1f", b.TurnoverSum))

	table.Render()
	fmt.Fprintln(c.out, "  Sharpe: population stdev, rf=0, x sqrt(252) | CAGR: calendar years")
	fmt.Fprintln(c.out, "  Hit rate = closed trades with positive net return / closed trades")
	fmt.Fprintln(c.out)
}

// printSensitivity imprime el apéndice: Sharpe de validación por candidato y
// su rerun full-sample.
func (c *Console) printSensitivity(sel *backtest.Selection) {
	fmt.Fprintln(c.out, "=== SENSITIVITY — validation sharpe per grid config ===")

	table := tablewriter.NewWriter(c.out)
	table.Header("", "Config", "Val Sharpe", "Full Sharpe", "Full CAGR", "Full MaxDD")

	for _, cand := range sel.Candidates {
		mark := ""
		if cand.Selected {
			mark = "*"
		}
		table.Append(mark, cand.Grid.String(),
			sharpeLabel(cand.ValidationSharpe),
			fmt.Sprintf("%.2f", cand.FullSample.Sharpe),
			pctLabel(cand.FullSample.CAGR),
			pctLabel(cand.FullSample.MaxDrawdown))
	}
	table.Render()
	fmt.Fprintln(c.out, "  * = selected on validation sharpe; test segment never votes")
	fmt.Fprintln(c.out)
}

// printTrades lista los trades cerrados más recientes.
func (c *Console) printTrades(trades []domain.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "no closed trades")
		return
	}

	show := trades
	if len(show) > c.trades {
		show = show[len(show)-c.trades:]
	}
	fmt.Fprintf(c.out, "=== TRADES (last %d of %d) ===\n", len(show), len(trades))

	table := tablewriter.NewWriter(c.out)
	table.Header("Entry", "Exit", "Bars", "Return")
	for _, t := range show {
		table.Append(
			t.EntryDate.Format("2006-01-02"),
			t.ExitDate.Format("2006-01-02"),
			fmt.Sprintf("%d", t.HoldingBars),
			pctLabel(t.Return),
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}

// PrintHistory imprime el historial de runs persistidos.
func (c *Console) PrintHistory(recs []domain.RunRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(c.out, "no stored runs")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("When", "Ticker", "Config", "Equity", "Sharpe", "MaxDD", "B&H Eq")
	for _, r := range recs {
		table.Append(
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Ticker,
			r.ConfigLabel,
			fmt.Sprintf("%.2fx", r.Strategy.EquityEnd),
			fmt.Sprintf("%.2f", r.Strategy.Sharpe),
			pctLabel(r.Strategy.MaxDrawdown),
			fmt.Sprintf("%.2fx", r.Benchmark.EquityEnd),
		)
	}
	table.Render()
}

// validationSharpe devuelve el Sharpe de validación del candidato elegido,
// o NaN en un run sin selección (configuración única).
func validationSharpe(sel *backtest.Selection) float64 {
	for _, cand := range sel.Candidates {
		if cand.Selected {
			return cand.ValidationSharpe
		}
	}
	return math.NaN()
}

func pctLabel(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

func ratioLabel(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", v*100)
}

func floatLabel(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", v)
}

func sharpeLabel(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}
