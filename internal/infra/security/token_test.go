package security

import "testing"

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def.ghi", token: "abc.def.ghi", ok: true},
		{header: "Bearer   padded  ", token: "padded", ok: true},
		{header: "", ok: false},
		{header: "Bearer ", ok: false},
		{header: "bearer abc", ok: false},
		{header: "Basic dXNlcjpwYXNz", ok: false},
		{header: "abc.def.ghi", ok: false},
	}

	for _, tc := range cases {
		token, ok := BearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("BearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestHashTokenIsStable(t *testing.T) {
	first := HashToken("token-value")
	second := HashToken("token-value")

	if first != second {
		t.Fatalf("expected stable hash, got %s and %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected hex sha256 digest, got %d chars", len(first))
	}
	if HashToken("other") == first {
		t.Fatal("expected different inputs to hash differently")
	}
}
