package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:51000",
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy with forwarded-for",
			remoteAddr: "10.0.0.5:8080",
			xff:        "203.0.113.7, 10.0.0.5",
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy with real-ip",
			remoteAddr: "192.168.1.10:8080",
			realIP:     "203.0.113.9",
			want:       "203.0.113.9",
		},
		{
			name:       "untrusted peer cannot spoof",
			remoteAddr: "203.0.113.7:51000",
			xff:        "1.2.3.4",
			want:       "203.0.113.7",
		},
		{
			name:       "trusted proxy with garbage header",
			remoteAddr: "127.0.0.1:9000",
			xff:        "not-an-ip",
			want:       "127.0.0.1",
		},
		{
			name:       "missing port",
			remoteAddr: "203.0.113.7",
			want:       "203.0.113.7",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := extractClientIP(r); got != tc.want {
				t.Errorf("extractClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsTrustedProxy(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.255.0.1", true},
		{"172.16.0.1", true},
		{"172.32.0.1", false},
		{"192.168.100.200", true},
		{"203.0.113.7", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tc.ip + ":1234"
		r.Header.Set("X-Real-IP", "198.51.100.1")
		got := extractClientIP(r) == "198.51.100.1"
		if got != tc.want {
			t.Errorf("%s trusted = %v, want %v", tc.ip, got, tc.want)
		}
	}
}
