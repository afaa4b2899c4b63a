package indexer

import "testing"

func TestParseHash(t *testing.T) {
	valid := "0xC80D1596E157DE769AF8467094A79A429B00C7921157CF19EE96AB4401D256CD"
	got, err := ParseHash(valid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0xc80d1596e157de769af8467094a79a429b00c7921157cf19ee96ab4401d256cd" {
		t.Fatalf("hash not normalized: %s", got)
	}

	for _, input := range []string{"", "0x12", "c80d1596e157de769af8467094a79a429b00c7921157cf19ee96ab4401d256cd", "0xzz"} {
		if _, err := ParseHash(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("")
	if err != nil || v != nil {
		t.Fatalf("empty input: %v %v", v, err)
	}
	v, err = ParseVersion(" 6876866764 ")
	if err != nil || v == nil || *v != 6876866764 {
		t.Fatalf("unexpected: %v %v", v, err)
	}
	if _, err := ParseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
}
