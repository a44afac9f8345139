package ark

import (
	"bytes"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"
)

func signedRequest(t *testing.T, at time.Time) *http.Request {
	t.Helper()
	payload := []byte(`{"req_key":"k","prompt":"p"}`)
	req, err := http.NewRequest(http.MethodPost,
		"https://visual.example.com/?Action=CVProcess&Version=2022-08-31",
		bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	sg := &signer{accessKey: "AKTEST", secretKey: "secret", region: "cn-north-1"}
	sg.sign(req, hashSHA256(payload), at)
	return req
}

func TestSign_SetsDateAndContentHash(t *testing.T) {
	at := time.Date(2024, 2, 17, 10, 30, 0, 0, time.UTC)
	req := signedRequest(t, at)

	if got := req.Header.Get("X-Date"); got != "20240217T103000Z" {
		t.Errorf("unexpected X-Date: %s", got)
	}
	hash := req.Header.Get("X-Content-Sha256")
	if len(hash) != 64 {
		t.Errorf("expected 64-char hex payload hash, got %q", hash)
	}
}

func TestSign_AuthorizationShape(t *testing.T) {
	at := time.Date(2024, 2, 17, 10, 30, 0, 0, time.UTC)
	req := signedRequest(t, at)

	auth := req.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "HMAC-SHA256 Credential=AKTEST/20240217/cn-north-1/cv/request, ") {
		t.Errorf("unexpected credential scope: %s", auth)
	}
	if !strings.Contains(auth, "SignedHeaders=content-type;host;x-content-sha256;x-date, ") {
		t.Errorf("signed headers must be sorted and semicolon-joined: %s", auth)
	}

	sigRe := regexp.MustCompile(`Signature=([0-9a-f]{64})$`)
	if !sigRe.MatchString(auth) {
		t.Errorf("expected 64-char lowercase hex signature: %s", auth)
	}
}

func TestSign_Deterministic(t *testing.T) {
	at := time.Date(2024, 2, 17, 10, 30, 0, 0, time.UTC)
	a := signedRequest(t, at).Header.Get("Authorization")
	b := signedRequest(t, at).Header.Get("Authorization")
	if a != b {
		t.Error("identical requests at the same instant must produce identical signatures")
	}
}

func TestSign_SignatureVariesWithInputs(t *testing.T) {
	base := time.Date(2024, 2, 17, 10, 30, 0, 0, time.UTC)

	a := signedRequest(t, base).Header.Get("Authorization")
	b := signedRequest(t, base.Add(time.Second)).Header.Get("Authorization")
	if extractSignature(t, a) == extractSignature(t, b) {
		t.Error("signature must change with the request time")
	}

	payload := []byte(`{"req_key":"k","prompt":"different"}`)
	req, _ := http.NewRequest(http.MethodPost, "https://visual.example.com/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	sg := &signer{accessKey: "AKTEST", secretKey: "secret", region: "cn-north-1"}
	sg.sign(req, hashSHA256(payload), base)
	if extractSignature(t, a) == extractSignature(t, req.Header.Get("Authorization")) {
		t.Error("signature must change with the payload")
	}
}

func TestSign_SignatureVariesWithSecret(t *testing.T) {
	at := time.Date(2024, 2, 17, 10, 30, 0, 0, time.UTC)
	payload := []byte(`{"req_key":"k"}`)

	sign := func(secret string) string {
		req, _ := http.NewRequest(http.MethodPost, "https://visual.example.com/", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		sg := &signer{accessKey: "AKTEST", secretKey: secret, region: "cn-north-1"}
		sg.sign(req, hashSHA256(payload), at)
		return extractSignature(t, req.Header.Get("Authorization"))
	}

	if sign("secret-a") == sign("secret-b") {
		t.Error("signature must depend on the secret key")
	}
}

func extractSignature(t *testing.T, auth string) string {
	t.Helper()
	idx := strings.LastIndex(auth, "Signature=")
	if idx < 0 {
		t.Fatalf("no signature in %q", auth)
	}
	return auth[idx+len("Signature="):]
}
