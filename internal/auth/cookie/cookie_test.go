package cookie

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, err := codec.Encode(Payload{SessionID: "abc-123", UserID: 42})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("token %q is not base64url", token)
	}

	got, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.SessionID != "abc-123" || got.UserID != 42 {
		t.Errorf("payload = %+v", got)
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	codec, _ := NewCodec("test-secret")
	token, _ := codec.Encode(Payload{SessionID: "abc-123", UserID: 42})

	value, sig, _ := strings.Cut(token, ".")

	other, _ := NewCodec("other-secret")
	forged, _ := other.Encode(Payload{SessionID: "abc-123", UserID: 99})

	cases := map[string]string{
		"no signature":       value,
		"tampered signature": value + "." + sig + "x",
		"foreign secret":     forged,
		"swapped payload":    strings.Repeat("A", len(value)) + "." + sig,
		"empty":              "",
	}
	for name, tok := range cases {
		if _, err := codec.Decode(tok); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("%s: err = %v, want ErrInvalidSignature", name, err)
		}
	}
}

func TestDecodeRejectsEmptyFields(t *testing.T) {
	codec, _ := NewCodec("test-secret")

	token, _ := codec.Encode(Payload{SessionID: "", UserID: 42})
	if _, err := codec.Decode(token); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("empty session id: err = %v, want ErrMalformedPayload", err)
	}

	token, _ = codec.Encode(Payload{SessionID: "abc", UserID: 0})
	if _, err := codec.Decode(token); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("zero user id: err = %v, want ErrMalformedPayload", err)
	}

	if _, err := NewCodec(""); !errors.Is(err, ErrNoSecret) {
		t.Errorf("empty secret: err = %v, want ErrNoSecret", err)
	}
}
