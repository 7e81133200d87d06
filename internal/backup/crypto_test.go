package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	k1 := DeriveKey("passphrase", salt)
	k2 := DeriveKey("passphrase", salt)
	if !bytes.Equal(k1, k2) {
		t.Error("same passphrase and salt should derive the same key")
	}
	if len(k1) != keySize {
		t.Errorf("key length = %d, want %d", len(k1), keySize)
	}
	if bytes.Equal(k1, DeriveKey("other", salt)) {
		t.Error("different passphrases should derive different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	plaintext := []byte("SQLite format 3\x00 pretend database pages")

	sealed, err := Seal(plaintext, "correct horse")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !bytes.HasPrefix(sealed, magic) {
		t.Error("sealed output should start with the magic header")
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("sealed output should not contain the plaintext")
	}

	got, err := Open(sealed, "correct horse")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip = %q, want %q", got, plaintext)
	}
}

func TestSealUsesFreshSalt(t *testing.T) {
	a, _ := Seal([]byte("same"), "pw")
	b, _ := Seal([]byte("same"), "pw")
	if bytes.Equal(a, b) {
		t.Error("two seals of the same input should differ")
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(sealed, "wrong"); err == nil {
		t.Error("expected error with wrong passphrase")
	}
}

func TestOpenRejectsForeignData(t *testing.T) {
	if _, err := Open([]byte("plain sqlite file"), "pw"); !errors.Is(err, ErrNotSnapshot) {
		t.Errorf("err = %v, want ErrNotSnapshot", err)
	}
	if _, err := Open(append([]byte{}, magic...), "pw"); !errors.Is(err, ErrNotSnapshot) {
		t.Errorf("truncated: err = %v, want ErrNotSnapshot", err)
	}
}

func TestOpenDetectsTampering(t *testing.T) {
	sealed, _ := Seal([]byte("activity rows"), "pw")
	sealed[len(sealed)-1] ^= 0xff

	if _, err := Open(sealed, "pw"); err == nil {
		t.Error("expected error for tampered ciphertext")
	}
}
