// Package report renders structured run results into the delivery formats:
// an HTML email body and Telegram alert texts. It consumes plain core
// outputs and knows nothing about how they were computed.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"InvestSentinel/internal/config"
	"InvestSentinel/internal/model"
)

// Data bundles one run's results for rendering. Nil FX and Portfolio mean
// the corresponding lookup failed upstream.
type Data struct {
	Date      time.Time
	Fx        *model.FxZoneResult
	Watchlist []config.WatchlistEntry
	Quotes    map[string]model.PricePoint
	Baselines map[string]model.BaselineSet
	Triggers  model.TriggerReport
	Portfolio *model.PortfolioSnapshot
	Failures  []string
}

// Subject builds the email subject line for a run.
func Subject(date time.Time) string {
	return fmt.Sprintf("Investment monitoring report - %s", date.Format("2006-01-02 Monday"))
}

var emailTmpl = template.Must(template.New("email").Parse(`<html>
<head>
<style>
  body { font-family: Arial, sans-serif; }
  .header { background-color: #2c3e50; color: white; padding: 20px; }
  .section { margin: 20px 0; padding: 15px; border-left: 4px solid #3498db; }
  .metric { margin: 10px 0; }
  .alert { background-color: #fff3cd; padding: 10px; margin: 10px 0; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
  th { background-color: #3498db; color: white; }
  .down { color: red; } .up { color: green; }
</style>
</head>
<body>
<div class="header">
  <h1>Investment Monitoring Report</h1>
  <p>{{.Date}}</p>
</div>

<div class="section">
  <h2>Dashboard</h2>
  <table>
    <tr><th>Item</th><th>Current</th><th>Change</th></tr>
    {{if .Fx}}<tr><td>USD/KRW</td><td>{{printf "%.2f" .Fx.CurrentRate}}</td><td>{{.Fx.ZoneName}}</td></tr>
    {{else}}<tr><td>USD/KRW</td><td colspan="2">lookup failed</td></tr>{{end}}
    {{range .Rows}}<tr><td>{{.Name}}</td><td>{{printf "%.2f" .Price}}</td><td class="{{.Class}}">{{printf "%+.2f%%" .ChangePct}}</td></tr>
    {{end}}
  </table>
</div>

<div class="section">
  <h2>Action Triggers</h2>
  {{range .Triggers}}<div class="{{.Class}}">{{.Text}}</div>
  {{end}}
</div>

{{if .Periods}}<div class="section">
  <h2>Multi-Horizon Baselines</h2>
  <table>
    <tr><th>Ticker</th><th>Horizon</th><th>Baseline</th><th>Change</th></tr>
    {{range .Periods}}<tr><td>{{.Ticker}}</td><td>{{.Label}}</td><td>{{.Baseline}}</td><td class="{{.Class}}">{{printf "%+.2f%%" .ChangePct}}</td></tr>
    {{end}}
  </table>
</div>{{end}}

{{if .Portfolio}}<div class="section">
  <h2>Portfolio Allocation</h2>
  <table>
    <tr><th>Position</th><th>Value (KRW)</th><th>Allocation</th></tr>
    {{range .Portfolio.Positions}}<tr><td>{{.Ticker}}</td><td>{{printf "%.0f" .ValueKRW}}</td><td>{{printf "%.1f%%" .AllocationPct}}</td></tr>
    {{end}}
    <tr><td>Cash</td><td>{{printf "%.0f" .Portfolio.TotalCashKRW}}</td><td>{{printf "%.1f%%" .Portfolio.CashPct}}</td></tr>
  </table>
  {{range .PortfolioWarnings}}<div class="alert">{{.}}</div>
  {{end}}
</div>{{end}}

{{if .Failures}}<div class="section">
  <h2>Data Issues</h2>
  {{range .Failures}}<div class="metric">{{.}}</div>
  {{end}}
</div>{{end}}
</body>
</html>
`))

type emailRow struct {
	Name      string
	Price     float64
	ChangePct float64
	Class     string
}

type emailTrigger struct {
	Class string
	Text  string
}

type emailPeriod struct {
	Ticker    string
	Label     string
	Baseline  string
	ChangePct float64
	Class     string
}

type emailData struct {
	Date              string
	Fx                *model.FxZoneResult
	Rows              []emailRow
	Triggers          []emailTrigger
	Periods           []emailPeriod
	Portfolio         *model.PortfolioSnapshot
	PortfolioWarnings []string
	Failures          []string
}

// ComposeEmail renders the full HTML report body.
func ComposeEmail(d Data) (string, error) {
	ed := emailData{
		Date:      d.Date.Format("2006-01-02 Monday"),
		Fx:        d.Fx,
		Portfolio: d.Portfolio,
		Failures:  d.Failures,
	}

	for _, entry := range d.Watchlist {
		q, ok := d.Quotes[entry.Ticker]
		if !ok {
			continue
		}
		name := entry.Name
		if name == "" {
			name = entry.Ticker
		}
		ed.Rows = append(ed.Rows, emailRow{
			Name:      name,
			Price:     q.CurrentPrice,
			ChangePct: q.ChangePct,
			Class:     changeClass(q.ChangePct),
		})
	}

	ed.Triggers = composeTriggerLines(d)

	for _, entry := range d.Watchlist {
		set, ok := d.Baselines[entry.Ticker]
		if !ok {
			continue
		}
		for _, h := range model.StandardHorizons {
			bp, ok := set.Periods[h]
			if !ok {
				continue
			}
			ed.Periods = append(ed.Periods, emailPeriod{
				Ticker:    bp.Ticker,
				Label:     h.Label(),
				Baseline:  fmt.Sprintf("%.2f (%s)", bp.BaselinePrice, bp.BaselineDate.Format("2006-01-02")),
				ChangePct: bp.ChangePct,
				Class:     changeClass(bp.ChangePct),
			})
		}
	}

	if d.Portfolio != nil {
		for _, w := range d.Portfolio.Warnings {
			ed.PortfolioWarnings = append(ed.PortfolioWarnings, w.Message)
		}
	}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, ed); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

func composeTriggerLines(d Data) []emailTrigger {
	var lines []emailTrigger

	if d.Fx != nil {
		lines = append(lines, emailTrigger{Class: "metric",
			Text: fmt.Sprintf("FX zone: %s -> %s", d.Fx.ZoneName, d.Fx.Action)})
	}
	// The FX status line is informational; only lines below count as triggers.
	base := len(lines)
	for _, b := range d.Triggers.Buys {
		lines = append(lines, emailTrigger{Class: "alert",
			Text: fmt.Sprintf("BUY %s: %+.1f%% vs monthly baseline -> %s", b.Ticker, b.ChangePct, b.Action)})
	}
	for _, s := range d.Triggers.Sells {
		lines = append(lines, emailTrigger{Class: "alert",
			Text: fmt.Sprintf("SELL %s: %+.1f%% vs monthly baseline -> %s", s.Ticker, s.ChangePct, s.Action)})
	}
	for _, cb := range d.Triggers.ConditionalBuys {
		lines = append(lines, emailTrigger{Class: "alert",
			Text: fmt.Sprintf("CONDITIONAL BUY %s: %s", cb.Ticker, cb.Action)})
	}
	for _, st := range d.Triggers.Conditions {
		if st.Check.Met() {
			continue
		}
		lines = append(lines, emailTrigger{Class: "metric",
			Text: fmt.Sprintf("%s buy condition not met (%s)", st.Ticker, describeCondition(st))})
	}
	if len(lines) == base {
		lines = append(lines, emailTrigger{Class: "metric", Text: "No triggers fired today"})
	}
	return lines
}

// describeCondition names the failing legs of a conditional buy.
func describeCondition(st model.ConditionalBuyStatus) string {
	var parts []string
	switch {
	case !st.Check.PERKnown:
		parts = append(parts, "P/E unavailable")
	case !st.Check.PEROk:
		parts = append(parts, fmt.Sprintf("P/E %.1f too high", *st.PER))
	}
	if !st.Check.DropOk {
		parts = append(parts, fmt.Sprintf("drawdown %.1f%% insufficient", st.DropPct))
	}
	return strings.Join(parts, ", ")
}

func changeClass(pct float64) string {
	if pct < 0 {
		return "down"
	}
	return "up"
}

// FormatFxChangeAlert renders the Telegram message for an intraday band
// transition.
func FormatFxChangeAlert(change model.FxZoneChange) string {
	var b strings.Builder
	b.WriteString("🚨 <b>FX zone change</b>\n\n")
	b.WriteString(fmt.Sprintf("USD/KRW %.2f\n", change.CurrentRate))
	b.WriteString(fmt.Sprintf("[%s] -> [%s]\n\n", change.PrevZoneName, change.ZoneName))
	b.WriteString(fmt.Sprintf("<b>Action:</b> %s", change.Action))
	return b.String()
}

// FormatTriggerAlert renders a compact Telegram summary of fired triggers,
// or an empty string when nothing fired.
func FormatTriggerAlert(t model.TriggerReport) string {
	if len(t.Buys) == 0 && len(t.Sells) == 0 && len(t.ConditionalBuys) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("⚡ <b>Triggers fired</b>\n")
	for _, buy := range t.Buys {
		b.WriteString(fmt.Sprintf("\n📉 %s %+.1f%% vs monthly baseline\n→ %s\n", buy.Ticker, buy.ChangePct, buy.Action))
	}
	for _, sell := range t.Sells {
		b.WriteString(fmt.Sprintf("\n📈 %s %+.1f%% vs monthly baseline\n→ %s\n", sell.Ticker, sell.ChangePct, sell.Action))
	}
	for _, cb := range t.ConditionalBuys {
		b.WriteString(fmt.Sprintf("\n🎯 %s %s\n", cb.Ticker, cb.Action))
	}
	return b.String()
}

// FormatPortfolioStatus renders the Telegram /portfolio reply.
func FormatPortfolioStatus(snap model.PortfolioSnapshot) string {
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio</b>\n\n")
	b.WriteString(fmt.Sprintf("Total assets: %.0f KRW\n", snap.TotalAssets))
	b.WriteString(fmt.Sprintf("Holdings: %.0f KRW | Cash: %.0f KRW (%.1f%%)\n", snap.TotalValueKRW, snap.TotalCashKRW, snap.CashPct))
	for _, p := range snap.Positions {
		b.WriteString(fmt.Sprintf("  %s: %.1f%%\n", p.Ticker, p.AllocationPct))
	}
	for _, w := range snap.Warnings {
		b.WriteString(fmt.Sprintf("⚠️ %s\n", w.Message))
	}
	return b.String()
}

// FormatFxStatus renders the Telegram /fx reply.
func FormatFxStatus(fx model.FxZoneResult) string {
	var b strings.Builder
	b.WriteString("💱 <b>USD/KRW</b>\n\n")
	b.WriteString(fmt.Sprintf("Rate: %.2f (baseline %.2f, %+.2f)\n", fx.CurrentRate, fx.Baseline, fx.DiffBaseline))
	b.WriteString(fmt.Sprintf("Zone: %s\n", fx.ZoneName))
	b.WriteString(fmt.Sprintf("Action: %s", fx.Action))
	return b.String()
}
