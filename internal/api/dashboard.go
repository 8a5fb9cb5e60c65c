package api

import (
	"html/template"
	"net/http"

	"github.com/kaiquant/kai/internal/ledger"
	"go.uber.org/zap"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>KAI Paper Trading</title>
<style>
body { font-family: ui-monospace, monospace; margin: 2rem; background: #111; color: #ddd; }
h1 { font-size: 1.3rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { padding: 0.3rem 0.8rem; border-bottom: 1px solid #333; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.pos { color: #6c6; }
.neg { color: #e66; }
</style>
</head>
<body>
<h1>KAI Paper Trading</h1>
<table>
<tr><td>Capital</td><td>{{printf "%.2f" .Wallet.Capital}}</td></tr>
<tr><td>Balance</td><td>{{printf "%.2f" .Wallet.Balance}}</td></tr>
<tr><td>Invested</td><td>{{printf "%.2f" .Invested}}</td></tr>
<tr><td>Realized P&amp;L</td><td class="{{if ge .RealizedPnl 0.0}}pos{{else}}neg{{end}}">{{printf "%+.2f" .RealizedPnl}}</td></tr>
</table>

<h1>Open Positions ({{len .Wallet.Positions}})</h1>
{{if .Wallet.Positions}}
<table>
<tr><th>Symbol</th><th>Qty</th><th>Entry</th><th>Stop</th><th>Target</th><th>Opened</th></tr>
{{range .Wallet.Positions}}
<tr>
<td>{{.Symbol}}</td>
<td>{{.Quantity}}</td>
<td>{{printf "%.2f" .EntryPrice}}</td>
<td>{{printf "%.2f" .StopLoss}}</td>
<td>{{printf "%.2f" .Target}}</td>
<td>{{.EntryTime.Format "2006-01-02"}}</td>
</tr>
{{end}}
</table>
{{else}}<p>none</p>{{end}}

<h1>Closed Trades ({{len .Wallet.Trades}})</h1>
{{if .Wallet.Trades}}
<table>
<tr><th>Symbol</th><th>Qty</th><th>Entry</th><th>Exit</th><th>Status</th><th>P&amp;L</th></tr>
{{range .Wallet.Trades}}
<tr>
<td>{{.Symbol}}</td>
<td>{{.Quantity}}</td>
<td>{{printf "%.2f" .EntryPrice}}</td>
<td>{{printf "%.2f" .ExitPrice}}</td>
<td>{{.Status}}</td>
<td class="{{if ge .RealizedPnl 0.0}}pos{{else}}neg{{end}}">{{printf "%+.2f" .RealizedPnl}}</td>
</tr>
{{end}}
</table>
{{else}}<p>none</p>{{end}}
</body>
</html>
`))

type dashboardData struct {
	Wallet      *ledger.Wallet
	Invested    float64
	RealizedPnl float64
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	wallet, ok := s.loadWallet(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := dashboardTmpl.Execute(w, dashboardData{
		Wallet:      wallet,
		Invested:    wallet.Invested(),
		RealizedPnl: wallet.RealizedPnl(),
	})
	if err != nil {
		s.logger.Error("rendering dashboard", zap.Error(err))
	}
}
