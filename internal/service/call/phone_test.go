package call

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5551234567", "+15551234567"},
		{"(555) 123-4567", "+15551234567"},
		{" 5551234567 ", "+15551234567"},
		{"+15551234567", "+15551234567"},
		{"+442071838750", "+442071838750"},
		{"442071838750", "+442071838750"},
	}

	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("5551234567")
	twice := NormalizePhone(once)
	if once != twice {
		t.Errorf("expected idempotence, got %q then %q", once, twice)
	}
}
