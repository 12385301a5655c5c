package crypto

import "testing"

func TestBoxRoundTrip(t *testing.T) {
	box := NewBox("payout-key")

	sealed, err := box.Encrypt("IBAN FR76 1234 5678")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed == "IBAN FR76 1234 5678" {
		t.Fatal("ciphertext equals plaintext")
	}

	plain, err := box.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "IBAN FR76 1234 5678" {
		t.Errorf("expected round trip, got %q", plain)
	}
}

func TestBoxWrongKey(t *testing.T) {
	sealed, err := NewBox("key-a").Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := NewBox("key-b").Decrypt(sealed); err == nil {
		t.Error("expected decrypt to fail with the wrong key")
	}
}

func TestBoxGarbageInput(t *testing.T) {
	box := NewBox("key")
	for _, in := range []string{"", "not base64!!", "QUJD"} {
		if _, err := box.Decrypt(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}
