// Package yahoo implements the market.Provider interface against the
// Yahoo Finance chart and quoteSummary APIs.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/kaiquant/kai/internal/core"
)

const (
	defaultChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"
)

// validSymbol matches symbols like AAPL, RELIANCE.NS, 0700.HK, M&M.NS
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9&-]{1,12}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo is a market.Provider backed by Yahoo Finance.
type Yahoo struct {
	client     *http.Client
	chartURL   string
	summaryURL string
}

// Option configures the provider.
type Option func(*Yahoo)

// WithBaseURLs overrides the API endpoints, mainly for tests.
func WithBaseURLs(chartURL, summaryURL string) Option {
	return func(y *Yahoo) {
		y.chartURL = chartURL
		y.summaryURL = summaryURL
	}
}

// New creates a Yahoo provider.
func New(opts ...Option) *Yahoo {
	y := &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		chartURL:   defaultChartURL,
		summaryURL: defaultSummaryURL,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the provider identifier.
func (y *Yahoo) Name() string {
	return "yahoo"
}

// DailySeries fetches up to lookback daily bars, oldest first.
func (y *Yahoo) DailySeries(ctx context.Context, symbol string, lookback int) (core.Series, error) {
	return y.fetchSeries(ctx, symbol, "1d", lookback)
}

// WeeklySeries fetches up to lookback weekly bars, oldest first.
func (y *Yahoo) WeeklySeries(ctx context.Context, symbol string, lookback int) (core.Series, error) {
	return y.fetchSeries(ctx, symbol, "1wk", lookback)
}

func (y *Yahoo) fetchSeries(ctx context.Context, symbol, interval string, lookback int) (core.Series, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays(interval, lookback))
	url := fmt.Sprintf("%s/%s?interval=%s&period1=%d&period2=%d",
		y.chartURL, symbol, interval, start.Unix(), end.Unix())

	var result chartResponse
	if err := y.getJSON(ctx, url, &result); err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}

	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrSymbolNotFound,
			fmt.Errorf("no data for symbol: %s", symbol))
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no quote data for symbol: %s", symbol))
	}
	quotes := r.Indicators.Quote[0]

	series := make(core.Series, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quotes.Open) || i >= len(quotes.High) || i >= len(quotes.Low) ||
			i >= len(quotes.Close) || i >= len(quotes.Volume) {
			continue
		}
		if quotes.Open[i] == nil || quotes.High[i] == nil || quotes.Low[i] == nil ||
			quotes.Close[i] == nil || quotes.Volume[i] == nil {
			continue // skip incomplete bars, no gap-filling
		}
		series = append(series, core.PriceBar{
			Open:   *quotes.Open[i],
			High:   *quotes.High[i],
			Low:    *quotes.Low[i],
			Close:  *quotes.Close[i],
			Volume: float64(*quotes.Volume[i]),
			Time:   time.Unix(int64(ts), 0),
		})
	}
	return series, nil
}

// lookbackDays converts a bar count to calendar days, padding trading
// gaps (weekends, holidays).
func lookbackDays(interval string, lookback int) int {
	switch interval {
	case "1wk":
		return lookback * 7
	default:
		return lookback * 3 / 2
	}
}

// Fundamentals fetches fundamental attributes. Fields Yahoo does not
// report stay zero and never trigger fundamental scoring rules.
func (y *Yahoo) Fundamentals(ctx context.Context, symbol string) (core.Fundamental, error) {
	if err := validateSymbol(symbol); err != nil {
		return core.Fundamental{}, core.WrapError(core.ErrDataUnavailable, err)
	}

	url := fmt.Sprintf("%s/%s?modules=summaryDetail,financialData,defaultKeyStatistics",
		y.summaryURL, symbol)

	var result summaryResponse
	if err := y.getJSON(ctx, url, &result); err != nil {
		return core.Fundamental{}, core.WrapError(core.ErrDataUnavailable, err)
	}
	if len(result.QuoteSummary.Result) == 0 {
		return core.Fundamental{}, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no fundamentals for symbol: %s", symbol))
	}

	r := result.QuoteSummary.Result[0]
	return core.Fundamental{
		PERatio:        r.SummaryDetail.TrailingPE.Raw,
		PriceToBook:    r.DefaultKeyStatistics.PriceToBook.Raw,
		MarketCap:      r.SummaryDetail.MarketCap.Raw,
		ReturnOnEquity: r.FinancialData.ReturnOnEquity.Raw,
		TotalDebt:      r.FinancialData.TotalDebt.Raw,
		RevenueGrowth:  r.FinancialData.RevenueGrowth.Raw,
	}, nil
}

// LastPrice fetches the most recent traded price.
func (y *Yahoo) LastPrice(ctx context.Context, symbol string) (float64, error) {
	if err := validateSymbol(symbol); err != nil {
		return 0, core.WrapError(core.ErrDataUnavailable, err)
	}

	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", y.chartURL, symbol)

	var result chartResponse
	if err := y.getJSON(ctx, url, &result); err != nil {
		return 0, core.WrapError(core.ErrDataUnavailable, err)
	}
	if result.Chart.Error != nil {
		return 0, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return 0, core.WrapError(core.ErrSymbolNotFound,
			fmt.Errorf("no data for symbol: %s", symbol))
	}

	price := result.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no market price for symbol: %s", symbol))
	}
	return price, nil
}

func (y *Yahoo) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; kai/1.0)")

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int     `json:"regularMarketTime"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	SummaryDetail struct {
		TrailingPE rawValue `json:"trailingPE"`
		MarketCap  rawValue `json:"marketCap"`
	} `json:"summaryDetail"`
	FinancialData struct {
		ReturnOnEquity rawValue `json:"returnOnEquity"`
		TotalDebt      rawValue `json:"totalDebt"`
		RevenueGrowth  rawValue `json:"revenueGrowth"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		PriceToBook rawValue `json:"priceToBook"`
	} `json:"defaultKeyStatistics"`
}
