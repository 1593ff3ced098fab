package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		path       string
		headers    map[string]string
		wantStatus int
	}{
		{
			"disabled passes everything",
			"", "/api/orders",
			nil,
			http.StatusOK,
		},
		{
			"valid bearer token",
			"secret", "/api/orders",
			map[string]string{"Authorization": "Bearer secret"},
			http.StatusOK,
		},
		{
			"valid api key header",
			"secret", "/api/orders",
			map[string]string{"X-API-Key": "secret"},
			http.StatusOK,
		},
		{
			"missing key",
			"secret", "/api/orders",
			nil,
			http.StatusUnauthorized,
		},
		{
			"wrong key",
			"secret", "/api/orders",
			map[string]string{"Authorization": "Bearer wrong"},
			http.StatusUnauthorized,
		},
		{
			"non bearer scheme ignored",
			"secret", "/api/orders",
			map[string]string{"Authorization": "Basic secret"},
			http.StatusUnauthorized,
		},
		{
			"health endpoint bypasses the key",
			"secret", "/api/health",
			nil,
			http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(tt.apiKey)(okHandler())

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
