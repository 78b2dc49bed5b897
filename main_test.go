package main

import (
	"net/http/httptest"
	"testing"

	svc "github.com/TheGringo-ai/LineSmart-sub000/services"
	"github.com/spf13/viper"
)

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins string
		requestOrigin  string
		expected       bool
	}{
		{
			name:           "Production frontend",
			allowedOrigins: "https://app.linesmart.io,https://admin.linesmart.io",
			requestOrigin:  "https://app.linesmart.io",
			expected:       true,
		},
		{
			name:           "Admin console later in the list",
			allowedOrigins: "https://app.linesmart.io,https://admin.linesmart.io",
			requestOrigin:  "https://admin.linesmart.io",
			expected:       true,
		},
		{
			name:           "Unknown origin rejected",
			allowedOrigins: "https://app.linesmart.io,https://admin.linesmart.io",
			requestOrigin:  "https://evil.example.com",
			expected:       false,
		},
		{
			name:           "Subdomain of an allowed host rejected",
			allowedOrigins: "https://app.linesmart.io",
			requestOrigin:  "https://app.linesmart.io.evil.example.com",
			expected:       false,
		},
		{
			name:           "No configured origins rejects everything",
			allowedOrigins: "",
			requestOrigin:  "https://app.linesmart.io",
			expected:       false,
		},
		{
			name:           "Whitespace around configured entries tolerated",
			allowedOrigins: "https://app.linesmart.io, http://localhost:5173",
			requestOrigin:  "http://localhost:5173",
			expected:       true,
		},
		{
			name:           "Vite dev server port allowed",
			allowedOrigins: "http://localhost:5173",
			requestOrigin:  "http://localhost:5173",
			expected:       true,
		},
		{
			name:           "Same host on another port rejected",
			allowedOrigins: "http://localhost:5173",
			requestOrigin:  "http://localhost:3000",
			expected:       false,
		},
		{
			name:           "Scheme mismatch rejected",
			allowedOrigins: "https://app.linesmart.io",
			requestOrigin:  "http://app.linesmart.io",
			expected:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			viper.Set("websocket.allowed_origins", tt.allowedOrigins)

			req := httptest.NewRequest("GET", "/api/v1/ws", nil)
			req.Header.Set("Origin", tt.requestOrigin)

			allowed := viper.GetString("websocket.allowed_origins")
			if got := svc.CheckOrigin(req, allowed); got != tt.expected {
				t.Errorf("CheckOrigin() = %v, expected %v for origin %s with allowed origins %q",
					got, tt.expected, tt.requestOrigin, tt.allowedOrigins)
			}
		})
	}
}
