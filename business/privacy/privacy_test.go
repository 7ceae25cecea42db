package privacy

import (
	"testing"
	"wasgeurtjeInsights/domain"
)

func TestHashField_Deterministic(t *testing.T) {
	a := HashField("Test@Example.com ")
	b := HashField("test@example.com")

	if a == "" {
		t.Fatal("expected non-empty hash")
	}
	if a != b {
		t.Errorf("case/whitespace variants must hash identically: %s vs %s", a, b)
	}
}

func TestHashField_EmptyInput(t *testing.T) {
	cases := []string{"", "   ", "\t\n"}
	for _, in := range cases {
		if got := HashField(in); got != "" {
			t.Errorf("HashField(%q) = %q, want empty", in, got)
		}
	}
}

func TestHashField_HexOutput(t *testing.T) {
	got := HashField("test@example.com")
	if len(got) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(got))
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		prefix string
		want   string
	}{
		{"plus prefix", "+31 6 1234 5678", "31", "0612345678"},
		{"double zero prefix", "0031612345678", "31", "0612345678"},
		{"already local", "0612345678", "31", "0612345678"},
		{"punctuation stripped", "+31 (6) 12-34.56 78", "31", "0612345678"},
		{"other country kept digits", "+49123456", "31", "49123456"},
		{"empty", "", "31", ""},
		{"garbage only", "abc-def", "31", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePhone(tc.raw, tc.prefix)
			if got != tc.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tc.raw, tc.prefix, got, tc.want)
			}
		})
	}
}

func TestNormalizePhone_VariantsCanonicalize(t *testing.T) {
	a := NormalizePhone("+31 6 1234 5678", "31")
	b := NormalizePhone("0031612345678", "31")
	if a != b {
		t.Errorf("prefix variants must canonicalize identically: %q vs %q", a, b)
	}
}

func TestHashTraits_PhoneCanonicalizedBeforeHashing(t *testing.T) {
	a := HashTraits(domain.UserTraits{Phone: "+31 6 1234 5678"}, "31")
	b := HashTraits(domain.UserTraits{Phone: "0031612345678"}, "31")

	if a.Phone == "" || a.Phone != b.Phone {
		t.Errorf("expected identical phone hashes, got %q vs %q", a.Phone, b.Phone)
	}
}

func TestHashTraits_SkipsEmptyFields(t *testing.T) {
	got := HashTraits(domain.UserTraits{Email: "a@b.nl"}, "31")
	if got.Email == "" {
		t.Error("expected email hash")
	}
	if got.Phone != "" || got.FirstName != "" {
		t.Error("empty fields must stay empty, not hash a blank placeholder")
	}
}
