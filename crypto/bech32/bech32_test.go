package bech32

import (
	"bytes"
	"testing"

	"github.com/iov-one/poolweave/errors"
)

func TestKnownEncoding(t *testing.T) {
	const enc = `tiov1w3jhxapdwpshjmr0v9jqymqq4y`

	hrp, payload, err := Decode(enc)
	if err != nil {
		t.Fatalf("cannot decode: %s", err)
	}
	if hrp != "tiov" {
		t.Fatalf("unexpected prefix %q", hrp)
	}
	if !bytes.Equal(payload, []byte("test-payload")) {
		t.Fatalf("unexpected payload %q", payload)
	}

	raw, err := Encode(hrp, payload)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}
	if raw != enc {
		t.Fatalf("invalid encoding: %q", raw)
	}
}

func TestAddressRoundTrip(t *testing.T) {
	addr := bytes.Repeat([]byte{0xab}, 20)
	raw, err := Encode("pool", addr)
	if err != nil {
		t.Fatalf("cannot encode: %s", err)
	}
	_, got, err := Decode(raw)
	if err != nil {
		t.Fatalf("cannot decode %q: %s", raw, err)
	}
	if !bytes.Equal(addr, got) {
		t.Fatalf("want %X, got %X", addr, got)
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, _, err := Decode("pool1invalidchecksum")
	if !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %v", err)
	}
}
