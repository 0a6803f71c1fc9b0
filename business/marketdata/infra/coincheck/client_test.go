package coincheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmaeda/arbwatch/internal/apperror"
)

type mockLogger struct{}

func (mockLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (mockLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (mockLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (mockLogger) Error(ctx context.Context, msg string, args ...any) {}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL}, mockLogger{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestFetchBook(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pair"); got != "btc_jpy" {
			t.Errorf("pair query = %q, want btc_jpy", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Asks and bids deliberately out of order.
		w.Write([]byte(`{
			"asks": [["27330","2.25"],["27340","0.4"],["27331","3.1"]],
			"bids": [["27240","1.2"],["27255","0.5"],["27254","2.0"]]
		}`))
	})

	snapshot, err := client.FetchBook(context.Background(), "btc_jpy")
	if err != nil {
		t.Fatalf("FetchBook: %v", err)
	}

	if !snapshot.BestAsk.Equal(decimal.RequireFromString("27330")) {
		t.Errorf("BestAsk = %s, want 27330", snapshot.BestAsk)
	}
	if !snapshot.BestBid.Equal(decimal.RequireFromString("27255")) {
		t.Errorf("BestBid = %s, want 27255", snapshot.BestBid)
	}
	if snapshot.Symbol != "btc_jpy" {
		t.Errorf("Symbol = %s, want btc_jpy", snapshot.Symbol)
	}
}

func TestFetchBook_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	_, err := client.FetchBook(context.Background(), "btc_jpy")
	if err == nil {
		t.Fatal("FetchBook returned nil error on HTTP 503")
	}
	if got := apperror.GetCode(err); got != apperror.CodeExchangeAPIError {
		t.Errorf("error code = %s, want %s", got, apperror.CodeExchangeAPIError)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		resp     OrderBooksResponse
		wantCode apperror.Code
		wantBid  string
		wantAsk  string
	}{
		{
			name: "valid_book",
			resp: OrderBooksResponse{
				Asks: [][]string{{"101", "1"}, {"102", "2"}},
				Bids: [][]string{{"100", "1"}, {"99", "2"}},
			},
			wantBid: "100",
			wantAsk: "101",
		},
		{
			name: "empty_asks",
			resp: OrderBooksResponse{
				Bids: [][]string{{"100", "1"}},
			},
			wantCode: apperror.CodeEmptyOrderbook,
		},
		{
			name: "empty_bids",
			resp: OrderBooksResponse{
				Asks: [][]string{{"101", "1"}},
			},
			wantCode: apperror.CodeEmptyOrderbook,
		},
		{
			name: "short_tuple",
			resp: OrderBooksResponse{
				Asks: [][]string{{"101"}},
				Bids: [][]string{{"100", "1"}},
			},
			wantCode: apperror.CodeInvalidOrderbook,
		},
		{
			name: "non_numeric_price",
			resp: OrderBooksResponse{
				Asks: [][]string{{"abc", "1"}},
				Bids: [][]string{{"100", "1"}},
			},
			wantCode: apperror.CodeInvalidOrderbook,
		},
		{
			name: "zero_best_price",
			resp: OrderBooksResponse{
				Asks: [][]string{{"0", "1"}},
				Bids: [][]string{{"100", "1"}},
			},
			wantCode: apperror.CodeInvalidOrderbook,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, err := tt.resp.Normalize("btc_jpy")
			if tt.wantCode != "" {
				if err == nil {
					t.Fatal("Normalize returned nil error")
				}
				if got := apperror.GetCode(err); got != tt.wantCode {
					t.Errorf("error code = %s, want %s", got, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if !snapshot.BestBid.Equal(decimal.RequireFromString(tt.wantBid)) {
				t.Errorf("BestBid = %s, want %s", snapshot.BestBid, tt.wantBid)
			}
			if !snapshot.BestAsk.Equal(decimal.RequireFromString(tt.wantAsk)) {
				t.Errorf("BestAsk = %s, want %s", snapshot.BestAsk, tt.wantAsk)
			}
		})
	}
}
