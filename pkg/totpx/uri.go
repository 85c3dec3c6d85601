package totpx

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const DefaultQRSize = 300

// Provisioning is the content of an otpauth://totp URI.
type Provisioning struct {
	Secret string
	Label  string
	Issuer string
}

// BuildURI formats an otpauth://totp provisioning URI. Label and issuer are
// percent-encoded as URI components, so reserved characters and non-ASCII
// text cannot break out of their position.
func BuildURI(secret, accountLabel, issuer string) (string, error) {
	if strings.TrimSpace(accountLabel) == "" {
		return "", fmt.Errorf("%w: account label is required", ErrInvalidInput)
	}
	if strings.TrimSpace(issuer) == "" {
		return "", fmt.Errorf("%w: issuer is required", ErrInvalidInput)
	}
	if _, err := DecodeSecret(secret); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(escapeComponent(issuer))
	b.WriteByte(':')
	b.WriteString(escapeComponent(accountLabel))
	b.WriteString("?secret=")
	b.WriteString(strings.ToUpper(strings.TrimSpace(secret)))
	b.WriteString("&issuer=")
	b.WriteString(escapeComponent(issuer))
	return b.String(), nil
}

// ParseURI is the inverse of BuildURI.
func ParseURI(uri string) (Provisioning, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Provisioning{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if u.Scheme != "otpauth" || u.Host != "totp" {
		return Provisioning{}, fmt.Errorf("%w: not an otpauth totp uri", ErrInvalidInput)
	}

	// Split on the literal separator before decoding so an encoded ':' in
	// the issuer or label stays part of its component.
	escaped := strings.TrimPrefix(u.EscapedPath(), "/")
	prefix, rawLabel, found := strings.Cut(escaped, ":")
	if !found {
		prefix, rawLabel = "", escaped
	}

	label, err := url.PathUnescape(rawLabel)
	if err != nil {
		return Provisioning{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	issuer, err := url.PathUnescape(prefix)
	if err != nil {
		return Provisioning{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	q := u.Query()
	if qi := q.Get("issuer"); qi != "" {
		issuer = qi
	}

	p := Provisioning{
		Secret: q.Get("secret"),
		Label:  label,
		Issuer: issuer,
	}
	if p.Secret == "" || p.Label == "" {
		return Provisioning{}, fmt.Errorf("%w: missing secret or label", ErrInvalidInput)
	}
	return p, nil
}

// QRImageURL embeds a provisioning URI as the value of an image-rendering
// endpoint's query string, e.g. /report/barcode?type=QR&value=...&width=300&height=300.
func QRImageURL(endpoint, uri string, size int) string {
	if size <= 0 {
		size = DefaultQRSize
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}

	dim := strconv.Itoa(size)
	return endpoint + sep + "type=QR&value=" + url.QueryEscape(uri) + "&width=" + dim + "&height=" + dim
}

// escapeComponent encodes everything outside the RFC 3986 unreserved set.
// QueryEscape already does that, except it writes spaces as '+'.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
