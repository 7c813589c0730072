package http

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// DigestAuth holds one RFC 2617 digest exchange, built from the target
// credentials and the server's WWW-Authenticate challenge.
type DigestAuth struct {
	Username string
	Password string
	Realm    string
	Nonce    string
	URI      string
	Qop      string
	Nc       string
	Cnonce   string
	Opaque   string
	Method   string
}

// ParseWWWAuthenticate parses the parameters of a Digest challenge.
// Quoted values may contain commas, e.g. qop="auth,auth-int".
func ParseWWWAuthenticate(header string) map[string]string {
	result := make(map[string]string)

	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "digest ") {
		header = header[7:]
	}

	for header != "" {
		header = strings.TrimLeft(header, " ,")
		eq := strings.IndexByte(header, '=')
		if eq < 0 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(header[:eq]))
		header = strings.TrimLeft(header[eq+1:], " ")

		var value string
		if strings.HasPrefix(header, `"`) {
			end := strings.IndexByte(header[1:], '"')
			if end < 0 {
				value, header = header[1:], ""
			} else {
				value, header = header[1:end+1], header[end+2:]
			}
		} else {
			end := strings.IndexByte(header, ',')
			if end < 0 {
				value, header = header, ""
			} else {
				value, header = header[:end], header[end+1:]
			}
			value = strings.TrimSpace(value)
		}
		if key != "" {
			result[key] = value
		}
	}

	return result
}

// ComputeDigestResponse calculates the digest response hash
func (d *DigestAuth) ComputeDigestResponse() string {
	ha1 := md5Hash(d.Username + ":" + d.Realm + ":" + d.Password)
	ha2 := md5Hash(d.Method + ":" + d.URI)

	if d.Qop == "auth" || d.Qop == "auth-int" {
		return md5Hash(strings.Join([]string{ha1, d.Nonce, d.Nc, d.Cnonce, d.Qop, ha2}, ":"))
	}
	return md5Hash(ha1 + ":" + d.Nonce + ":" + ha2)
}

// BuildAuthorizationHeader creates the Authorization header value
func (d *DigestAuth) BuildAuthorizationHeader() string {
	parts := []string{
		fmt.Sprintf(`username="%s"`, d.Username),
		fmt.Sprintf(`realm="%s"`, d.Realm),
		fmt.Sprintf(`nonce="%s"`, d.Nonce),
		fmt.Sprintf(`uri="%s"`, d.URI),
		fmt.Sprintf(`response="%s"`, d.ComputeDigestResponse()),
	}

	if d.Qop != "" {
		parts = append(parts,
			"qop="+d.Qop,
			"nc="+d.Nc,
			fmt.Sprintf(`cnonce="%s"`, d.Cnonce),
		)
	}

	if d.Opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, d.Opaque))
	}

	return "Digest " + strings.Join(parts, ", ")
}

// GenerateCnonce generates a random client nonce
func GenerateCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func md5Hash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
