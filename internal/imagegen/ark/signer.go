package ark

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	signingAlgorithm = "HMAC-SHA256"
	signingService   = "cv"
	credentialSuffix = "request"
)

// signer computes the provider's request signature: a canonical request
// hash, a scoped signing key derived by nested HMAC over
// date/region/service/request, and a final signature over the
// string-to-sign.
type signer struct {
	accessKey string
	secretKey string
	region    string
}

// sign attaches X-Date, X-Content-Sha256, and Authorization headers to req.
// payloadHash is the lowercase hex SHA-256 of the request body.
func (s *signer) sign(req *http.Request, payloadHash string, now time.Time) {
	xDate := now.UTC().Format("20060102T150405Z")
	shortDate := xDate[:8]

	req.Header.Set("X-Date", xDate)
	req.Header.Set("X-Content-Sha256", payloadHash)

	headers := map[string]string{
		"content-type":     req.Header.Get("Content-Type"),
		"host":             req.Host,
		"x-content-sha256": payloadHash,
		"x-date":           xDate,
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	signedHeaders := strings.Join(names, ";")

	var canonicalHeaders strings.Builder
	for _, name := range names {
		canonicalHeaders.WriteString(name)
		canonicalHeaders.WriteString(":")
		canonicalHeaders.WriteString(strings.TrimSpace(headers[name]))
		canonicalHeaders.WriteString("\n")
	}

	canonicalRequest := strings.Join([]string{
		req.Method,
		req.URL.EscapedPath(),
		req.URL.Query().Encode(),
		canonicalHeaders.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{shortDate, s.region, signingService, credentialSuffix}, "/")
	stringToSign := strings.Join([]string{
		signingAlgorithm,
		xDate,
		scope,
		hashSHA256([]byte(canonicalRequest)),
	}, "\n")

	kDate := hmacSHA256([]byte(s.secretKey), shortDate)
	kRegion := hmacSHA256(kDate, s.region)
	kService := hmacSHA256(kRegion, signingService)
	kSigning := hmacSHA256(kService, credentialSuffix)
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signingAlgorithm, s.accessKey, scope, signedHeaders, signature))
}

func hashSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}
