package security

import (
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		target     string
		userAgent  string
		method     string
		suspicious bool
	}{
		{name: "plain api call", target: "/api/v1/projects", method: "GET", suspicious: false},
		{name: "curl is fine", target: "/api/v1/reports", method: "POST", userAgent: "curl/8.4.0", suspicious: false},
		{name: "path traversal", target: "/api/v1/../../etc/passwd", method: "GET", suspicious: true},
		{name: "dotenv probe", target: "/.env", method: "GET", suspicious: true},
		{name: "probe in query", target: "/api/v1/projects?file=etc/passwd", method: "GET", suspicious: true},
		{name: "scanner user agent", target: "/api/v1/projects", method: "GET", userAgent: "sqlmap/1.7", suspicious: true},
		{name: "trace method", target: "/api/v1/projects", method: "TRACE", suspicious: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.userAgent != "" {
				r.Header.Set("User-Agent", tt.userAgent)
			}
			if got := d.DetectSuspiciousRequest(r); got != tt.suspicious {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.suspicious)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{name: "direct public client", remoteAddr: "203.0.113.9:44321", want: "203.0.113.9"},
		{name: "forwarded header from untrusted source ignored", remoteAddr: "203.0.113.9:44321", xff: "198.51.100.7", want: "203.0.113.9"},
		{name: "forwarded header from trusted proxy honored", remoteAddr: "10.0.0.5:44321", xff: "198.51.100.7", want: "198.51.100.7"},
		{name: "first hop wins", remoteAddr: "127.0.0.1:44321", xff: "198.51.100.7, 10.0.0.5", want: "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/projects", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()

	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatalf("AddTrustedProxy: %v", err)
	}
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Fatal("expected error for invalid CIDR")
	}

	r := httptest.NewRequest("GET", "/api/v1/projects", nil)
	r.RemoteAddr = "203.0.113.9:44321"
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	if got := d.ExtractClientIP(r); got != "198.51.100.7" {
		t.Errorf("ExtractClientIP() = %q, want forwarded client", got)
	}
}
