package webpush

import (
	"bytes"
	"errors"
	"testing"
)

func testKeyPairBytes() (client, server []byte) {
	client = make([]byte, publicKeyLength)
	server = make([]byte, publicKeyLength)
	for i := range client {
		client[i] = byte(i)
		server[i] = byte(100 + i)
	}
	client[0] = 0x04
	server[0] = 0x04
	return client, server
}

func TestBuildContextLayout(t *testing.T) {
	client, server := testKeyPairBytes()

	ctx, err := buildContext(client, server)
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}
	if len(ctx) != contextLength {
		t.Fatalf("context length = %d, want %d", len(ctx), contextLength)
	}

	if ctx[0] != 0x00 {
		t.Fatalf("leading byte = %#x, want 0x00", ctx[0])
	}
	if ctx[1] != 0x00 || ctx[2] != 0x41 {
		t.Fatalf("client key length prefix = %#x %#x, want 0x00 0x41", ctx[1], ctx[2])
	}
	if !bytes.Equal(ctx[3:68], client) {
		t.Fatalf("client key bytes misplaced")
	}
	if ctx[68] != 0x00 || ctx[69] != 0x41 {
		t.Fatalf("server key length prefix = %#x %#x, want 0x00 0x41", ctx[68], ctx[69])
	}
	if !bytes.Equal(ctx[70:135], server) {
		t.Fatalf("server key bytes misplaced")
	}
}

func TestBuildContextRejectsBadKeyLength(t *testing.T) {
	client, server := testKeyPairBytes()

	if _, err := buildContext(client[:64], server); !errors.Is(err, ErrInvalidKeyLength) {
		t.Fatalf("short client key: got %v, want ErrInvalidKeyLength", err)
	}
	if _, err := buildContext(client, append(server, 0x00)); !errors.Is(err, ErrInvalidKeyLength) {
		t.Fatalf("long server key: got %v, want ErrInvalidKeyLength", err)
	}
}

func TestBuildInfoLayout(t *testing.T) {
	client, server := testKeyPairBytes()
	ctx, err := buildContext(client, server)
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}

	info, err := buildInfo("aesgcm", ctx)
	if err != nil {
		t.Fatalf("buildInfo: %v", err)
	}

	prefix := []byte("Content-Encoding: aesgcm\x00P-256")
	if !bytes.HasPrefix(info, prefix) {
		t.Fatalf("info prefix mismatch: %q", info[:len(prefix)])
	}
	if !bytes.Equal(info[len(prefix):], ctx) {
		t.Fatalf("info does not end with the key context")
	}
	if want := len(prefix) + contextLength; len(info) != want {
		t.Fatalf("info length = %d, want %d", len(info), want)
	}
}

func TestBuildInfoRejectsBadContext(t *testing.T) {
	if _, err := buildInfo("nonce", make([]byte, 134)); !errors.Is(err, ErrInvalidContextLength) {
		t.Fatalf("got %v, want ErrInvalidContextLength", err)
	}
}
