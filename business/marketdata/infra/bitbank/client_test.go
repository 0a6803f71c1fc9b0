package bitbank

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
		if r.URL.Path != "/btc_jpy/depth" {
			t.Errorf("path = %q, want /btc_jpy/depth", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": 1,
			"data": {
				"asks": [["33410","0.5"],["33405","1.2"],["33420","2"]],
				"bids": [["33350","0.7"],["33390","0.3"],["33380","1"]],
				"timestamp": 1722902400000
			}
		}`))
	})

	snapshot, err := client.FetchBook(context.Background(), "btc_jpy")
	if err != nil {
		t.Fatalf("FetchBook: %v", err)
	}

	if !snapshot.BestAsk.Equal(decimal.RequireFromString("33405")) {
		t.Errorf("BestAsk = %s, want 33405", snapshot.BestAsk)
	}
	if !snapshot.BestBid.Equal(decimal.RequireFromString("33390")) {
		t.Errorf("BestBid = %s, want 33390", snapshot.BestBid)
	}
}

func TestFetchBook_EnvelopeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// bitbank reports failures with HTTP 200 and success: 0.
		w.Write([]byte(`{"success": 0, "data": {"code": 10000}}`))
	})

	_, err := client.FetchBook(context.Background(), "btc_jpy")
	if err == nil {
		t.Fatal("FetchBook returned nil error for success:0 envelope")
	}
	if got := apperror.GetCode(err); got != apperror.CodeExchangeAPIError {
		t.Errorf("error code = %s, want %s", got, apperror.CodeExchangeAPIError)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		resp     DepthResponse
		wantCode apperror.Code
		wantBid  string
		wantAsk  string
	}{
		{
			name: "valid_depth",
			resp: DepthResponse{
				Success: 1,
				Data: DepthData{
					Asks: [][]string{{"101", "1"}, {"102", "2"}},
					Bids: [][]string{{"99", "2"}, {"100", "1"}},
				},
			},
			wantBid: "100",
			wantAsk: "101",
		},
		{
			name:     "envelope_failure",
			resp:     DepthResponse{Success: 0, Data: DepthData{Code: 20001}},
			wantCode: apperror.CodeExchangeAPIError,
		},
		{
			name: "empty_side",
			resp: DepthResponse{
				Success: 1,
				Data:    DepthData{Bids: [][]string{{"100", "1"}}},
			},
			wantCode: apperror.CodeEmptyOrderbook,
		},
		{
			name: "malformed_tuple",
			resp: DepthResponse{
				Success: 1,
				Data: DepthData{
					Asks: [][]string{{"x", "1"}},
					Bids: [][]string{{"100", "1"}},
				},
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
