package bitflyer

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
		if r.URL.Path != "/v1/board" {
			t.Errorf("path = %q, want /v1/board", r.URL.Path)
		}
		if got := r.URL.Query().Get("product_code"); got != "BTC_JPY" {
			t.Errorf("product_code query = %q, want BTC_JPY", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"mid_price": 33320,
			"bids": [{"price": 30000, "size": 0.1}, {"price": 33300, "size": 2}, {"price": 33250, "size": 1}],
			"asks": [{"price": 36640, "size": 5}, {"price": 33340, "size": 0.4}, {"price": 33400, "size": 1}]
		}`))
	})

	snapshot, err := client.FetchBook(context.Background(), "BTC_JPY")
	if err != nil {
		t.Fatalf("FetchBook: %v", err)
	}

	if !snapshot.BestAsk.Equal(decimal.RequireFromString("33340")) {
		t.Errorf("BestAsk = %s, want 33340", snapshot.BestAsk)
	}
	if !snapshot.BestBid.Equal(decimal.RequireFromString("33300")) {
		t.Errorf("BestBid = %s, want 33300", snapshot.BestBid)
	}
}

func TestFetchBook_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": -156, "error_message": "Invalid product"}`))
	})

	_, err := client.FetchBook(context.Background(), "NOPE_JPY")
	if err == nil {
		t.Fatal("FetchBook returned nil error on HTTP 400")
	}
	if got := apperror.GetCode(err); got != apperror.CodeExchangeAPIError {
		t.Errorf("error code = %s, want %s", got, apperror.CodeExchangeAPIError)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		resp     BoardResponse
		wantCode apperror.Code
		wantBid  string
		wantAsk  string
	}{
		{
			name: "valid_board",
			resp: BoardResponse{
				MidPrice: 100.5,
				Bids:     []BoardLevel{{Price: 100, Size: 1}, {Price: 99.5, Size: 2}},
				Asks:     []BoardLevel{{Price: 101, Size: 1}, {Price: 101.5, Size: 2}},
			},
			wantBid: "100",
			wantAsk: "101",
		},
		{
			name: "empty_bids",
			resp: BoardResponse{
				Asks: []BoardLevel{{Price: 101, Size: 1}},
			},
			wantCode: apperror.CodeEmptyOrderbook,
		},
		{
			name: "zero_price_level",
			resp: BoardResponse{
				Bids: []BoardLevel{{Price: 0, Size: 1}},
				Asks: []BoardLevel{{Price: 101, Size: 1}},
			},
			wantCode: apperror.CodeInvalidOrderbook,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, err := tt.resp.Normalize("BTC_JPY")
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
