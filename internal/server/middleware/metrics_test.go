package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/v1/pages/3f1c2a7b-9d4e-4f6a-8b2c-1a2b3c4d5e6f/data": "/v1/pages/:id/data",
		"/v1/pages/123":  "/v1/pages/:id",
		"/v1/pages":      "/v1/pages",
		"/v1/auth/login": "/v1/auth/login",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
