package passhash

import "testing"

func TestHashVerify_RoundTrip(t *testing.T) {
	// low iteration count keeps the test fast
	enc, err := HashPasswordWithIters("correct horse battery staple", 1_000)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := VerifyPassword("correct horse battery staple", enc)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}

	ok, err = VerifyPassword("wrong password", enc)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	a, err := HashPasswordWithIters("pw", 1_000)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPasswordWithIters("pw", 1_000)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password should differ by salt")
	}
}

func TestVerify_MalformedEncoding(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-hash"); err == nil {
		t.Fatal("expected error for unsupported prefix")
	}
	if _, err := VerifyPassword("pw", "pbkdf2_sha256$abc$def"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
