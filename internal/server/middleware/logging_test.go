package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggingRecordsCallerAndLevel(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		userID     string
		wantLevel  string
		wantUserID string
	}{
		{"ok request logs info", http.StatusOK, "buyer-1", "INFO", "buyer-1"},
		{"client error logs warn", http.StatusNotFound, "buyer-1", "WARN", "buyer-1"},
		{"server error logs error", http.StatusInternalServerError, "", "ERROR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			// Identity outside Logging, matching the server chain.
			handler := Identity()(Logging(logger)(inner))

			req := httptest.NewRequest(http.MethodGet, "/api/orders/buyer", nil)
			if tt.userID != "" {
				req.Header.Set("X-User-ID", tt.userID)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var line struct {
				Level  string `json:"level"`
				Status int    `json:"status"`
				UserID string `json:"user_id"`
			}
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("decode log line: %v (%s)", err, buf.String())
			}
			if line.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", line.Level, tt.wantLevel)
			}
			if line.Status != tt.status {
				t.Errorf("logged status = %d, want %d", line.Status, tt.status)
			}
			if line.UserID != tt.wantUserID {
				t.Errorf("logged user_id = %q, want %q", line.UserID, tt.wantUserID)
			}
		})
	}
}
