package password

import (
	"strings"
	"testing"
)

func TestHashVerify(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Errorf("encoded = %q, want argon2id format", encoded)
	}

	if !Verify("correct horse battery staple", encoded) {
		t.Error("correct password rejected")
	}
	if Verify("wrong password", encoded) {
		t.Error("wrong password accepted")
	}

	// Salted: two hashes of the same password differ.
	again, _ := Hash("correct horse battery staple")
	if again == encoded {
		t.Error("hash is not salted")
	}
}

func TestVerifyMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$!!!",
	} {
		if Verify("anything", encoded) {
			t.Errorf("malformed hash %q verified", encoded)
		}
	}
}
