package account

import "testing"

func TestParseIDClassification(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind IDKind
		key  string
	}{
		{"lowercase hex24", "507f1f77bcf86cd799439011", KindGenerated, "507f1f77bcf86cd799439011"},
		{"uppercase hex24 normalized", "507F1F77BCF86CD799439011", KindGenerated, "507f1f77bcf86cd799439011"},
		{"mixed case hex24 normalized", "507f1F77Bcf86CD799439011", KindGenerated, "507f1f77bcf86cd799439011"},
		{"too short", "507f1f77bcf86cd79943901", KindLiteral, "507f1f77bcf86cd79943901"},
		{"too long", "507f1f77bcf86cd7994390111", KindLiteral, "507f1f77bcf86cd7994390111"},
		{"non-hex char", "507f1f77bcf86cd79943901z", KindLiteral, "507f1f77bcf86cd79943901z"},
		{"legacy key", "acct-legacy-001", KindLiteral, "acct-legacy-001"},
		{"empty", "", KindLiteral, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := ParseID(tt.in)
			if id.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", id.Kind(), tt.kind)
			}
			if id.Key() != tt.key {
				t.Errorf("Key() = %q, want %q", id.Key(), tt.key)
			}
		})
	}
}

func TestParseIDCaseInsensitiveEquality(t *testing.T) {
	a := ParseID("507F1F77BCF86CD799439011")
	b := ParseID("507f1f77bcf86cd799439011")
	if a != b {
		t.Errorf("same generated id in different cases should compare equal: %v != %v", a, b)
	}
}

func TestGeneratedIDRoundTrip(t *testing.T) {
	var raw [12]byte
	for i := range raw {
		raw[i] = byte(i * 17)
	}

	id := GeneratedID(raw)
	if id.Kind() != KindGenerated {
		t.Fatalf("Kind() = %v, want KindGenerated", id.Kind())
	}
	if got := ParseID(id.Key()); got != id {
		t.Errorf("ParseID(Key()) = %v, want %v", got, id)
	}

	back, ok := id.Bytes()
	if !ok {
		t.Fatal("Bytes() ok = false for generated id")
	}
	if back != raw {
		t.Errorf("Bytes() = %x, want %x", back, raw)
	}
}

func TestLiteralIDHasNoBytes(t *testing.T) {
	id := LiteralID("acct-legacy-001")
	if _, ok := id.Bytes(); ok {
		t.Error("Bytes() ok = true for literal id")
	}
}

func TestLiteralHex24String(t *testing.T) {
	// A LiteralID constructed from a hex24 string stays literal; only ParseID
	// classifies.
	id := LiteralID("507f1f77bcf86cd799439011")
	if id.Kind() != KindLiteral {
		t.Errorf("Kind() = %v, want KindLiteral", id.Kind())
	}
}

func TestIDIsZero(t *testing.T) {
	var zero ID
	if !zero.IsZero() {
		t.Error("zero ID should report IsZero")
	}
	if ParseID("x").IsZero() {
		t.Error("non-empty ID should not report IsZero")
	}
}
