package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaiquant/kai/internal/core"
	"github.com/kaiquant/kai/internal/market"
)

func TestYahoo_ImplementsProvider(t *testing.T) {
	var _ market.Provider = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	y := New()
	if y.Name() != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", y.Name())
	}
}

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		valid  bool
	}{
		{"AAPL", true},
		{"RELIANCE.NS", true},
		{"M&M.NS", true},
		{"BAJAJ-AUTO.NS", true},
		{"0700.HK", true},
		{"", false},
		{"../etc/passwd", false},
		{"VERYLONGSYMBOLNAME.EXCH", false},
	}

	for _, tc := range tests {
		err := validateSymbol(tc.symbol)
		if tc.valid && err != nil {
			t.Errorf("validateSymbol(%q) = %v, want nil", tc.symbol, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("validateSymbol(%q) = nil, want error", tc.symbol)
		}
	}
}

func TestYahoo_DailySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"symbol":"RELIANCE.NS","regularMarketPrice":2501.5},
			"timestamp":[1700000000,1700086400,1700172800],
			"indicators":{"quote":[{
				"open":[100,null,102],
				"high":[105,null,108],
				"low":[99,null,101],
				"close":[104,null,107],
				"volume":[1000,null,1200]
			}]}
		}]}}`)
	}))
	defer srv.Close()

	y := New(WithBaseURLs(srv.URL, srv.URL))
	series, err := y.DailySeries(context.Background(), "RELIANCE.NS", 365)
	if err != nil {
		t.Fatalf("DailySeries failed: %v", err)
	}

	// The null bar is skipped, not filled.
	if len(series) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(series))
	}
	if series[0].Close != 104 || series[1].Close != 107 {
		t.Errorf("unexpected closes: %f, %f", series[0].Close, series[1].Close)
	}
	if series[1].Volume != 1200 {
		t.Errorf("volume = %f, want 1200", series[1].Volume)
	}
}

func TestYahoo_DailySeries_PartialBarSkipped(t *testing.T) {
	// A halted session can report an open with the rest of the bar
	// null; such bars are dropped whole, never dereferenced.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"symbol":"RELIANCE.NS","regularMarketPrice":2501.5},
			"timestamp":[1700000000,1700086400],
			"indicators":{"quote":[{
				"open":[100,101],
				"high":[105,null],
				"low":[99,null],
				"close":[104,null],
				"volume":[1000,null]
			}]}
		}]}}`)
	}))
	defer srv.Close()

	y := New(WithBaseURLs(srv.URL, srv.URL))
	series, err := y.DailySeries(context.Background(), "RELIANCE.NS", 365)
	if err != nil {
		t.Fatalf("DailySeries failed: %v", err)
	}

	if len(series) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(series))
	}
	if series[0].Close != 104 {
		t.Errorf("close = %f, want 104", series[0].Close)
	}
}

func TestYahoo_DailySeries_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	y := New(WithBaseURLs(srv.URL, srv.URL))
	_, err := y.DailySeries(context.Background(), "NOPE", 365)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestYahoo_DailySeries_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	y := New(WithBaseURLs(srv.URL, srv.URL))
	_, err := y.DailySeries(context.Background(), "RELIANCE.NS", 365)
	if !errors.Is(err, core.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestYahoo_Fundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"summaryDetail":{"trailingPE":{"raw":22.4},"marketCap":{"raw":1.7e12}},
			"financialData":{"returnOnEquity":{"raw":0.18},"totalDebt":{"raw":3.2e11},"revenueGrowth":{"raw":0.09}},
			"defaultKeyStatistics":{"priceToBook":{"raw":2.1}}
		}]}}`)
	}))
	defer srv.Close()

	y := New(WithBaseURLs(srv.URL, srv.URL))
	f, err := y.Fundamentals(context.Background(), "RELIANCE.NS")
	if err != nil {
		t.Fatalf("Fundamentals failed: %v", err)
	}

	if f.PERatio != 22.4 {
		t.Errorf("PERatio = %f, want 22.4", f.PERatio)
	}
	if f.ReturnOnEquity != 0.18 {
		t.Errorf("ReturnOnEquity = %f, want 0.18", f.ReturnOnEquity)
	}
	if f.PriceToBook != 2.1 {
		t.Errorf("PriceToBook = %f, want 2.1", f.PriceToBook)
	}
}

func TestYahoo_Fundamentals_MissingFieldsAreZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"summaryDetail":{}}]}}`)
	}))
	defer srv.Close()

	y := New(WithBaseURLs(srv.URL, srv.URL))
	f, err := y.Fundamentals(context.Background(), "NEWIPO.NS")
	if err != nil {
		t.Fatalf("Fundamentals failed: %v", err)
	}
	if f != (core.Fundamental{}) {
		t.Errorf("expected zero fundamentals, got %+v", f)
	}
}

func TestYahoo_LastPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"TCS.NS","regularMarketPrice":3890.25}}]}}`)
	}))
	defer srv.Close()

	y := New(WithBaseURLs(srv.URL, srv.URL))
	price, err := y.LastPrice(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("LastPrice failed: %v", err)
	}
	if price != 3890.25 {
		t.Errorf("price = %f, want 3890.25", price)
	}
}
