// Package fingerprint derives coarse device bucket ids for sessions.
// The fingerprint is deliberately lossy: it groups devices by network
// block and browser family so an IP hop inside the block or a patch
// release does not mint a new session.
package fingerprint

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

// ErrNoPepper is returned when the maker is constructed without a
// server-side secret; fingerprints without one would be forgeable.
var ErrNoPepper = errors.New("fingerprint pepper is not set")

const truncatedLen = 12

// Maker computes peppered device fingerprints.
type Maker struct {
	pepper []byte
}

// NewMaker decodes the configured pepper (hex or base64) and returns a
// ready Maker.
func NewMaker(pepper string) (*Maker, error) {
	if pepper == "" {
		return nil, ErrNoPepper
	}
	return &Maker{pepper: decodePepper(pepper)}, nil
}

// Make returns the device fingerprint and the normalized user agent
// the session should record.
func (m *Maker) Make(ipAddress, userAgent string) (fp string, normalizedUA string) {
	ipNorm := NormalizeIP(ipAddress)
	normalizedUA = NormalizeUA(userAgent)

	mac := hmac.New(sha256.New, m.pepper)
	mac.Write([]byte(ipNorm + "|" + normalizedUA))
	sum := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(sum[:truncatedLen]), normalizedUA
}

// decodePepper accepts hex or base64 encoded secrets; anything else is
// used verbatim.
func decodePepper(pepper string) []byte {
	if b, err := hex.DecodeString(pepper); err == nil {
		return b
	}
	if b, err := base64.StdEncoding.DecodeString(pepper); err == nil {
		return b
	}
	return []byte(pepper)
}

// NormalizeIP collapses an address to its network block: IPv4 to /24,
// IPv6 to /64. Ports and the IPv4-mapped prefix are stripped first.
func NormalizeIP(ip string) string {
	if ip == "" {
		return "ip:none"
	}

	if addrPort, err := netip.ParseAddrPort(ip); err == nil {
		ip = addrPort.Addr().String()
	}

	addr, err := netip.ParseAddr(strings.Trim(ip, "[]"))
	if err != nil {
		return "ip:unknown"
	}
	addr = addr.Unmap()

	if addr.Is4() {
		prefix, err := addr.Prefix(24)
		if err != nil {
			return "ip:unknown"
		}
		octets := prefix.Addr().As4()
		return fmt.Sprintf("v4:%d.%d.%d.0/24", octets[0], octets[1], octets[2])
	}

	prefix, err := addr.Prefix(64)
	if err != nil {
		return "ip:unknown"
	}
	groups := prefix.Addr().As16()
	return fmt.Sprintf("v6:%02x%02x:%02x%02x:%02x%02x:%02x%02x::/64",
		groups[0], groups[1], groups[2], groups[3],
		groups[4], groups[5], groups[6], groups[7])
}

var uaVersions = map[string]*regexp.Regexp{
	"chrome":  regexp.MustCompile(`chrome/(\d+)`),
	"edge":    regexp.MustCompile(`edg/(\d+)`),
	"firefox": regexp.MustCompile(`firefox/(\d+)`),
	"safari":  regexp.MustCompile(`version/(\d+)`),
	"curl":    regexp.MustCompile(`curl/(\d+)`),
	"postman": regexp.MustCompile(`postmanruntime/(\d+)`),
}

// NormalizeUA reduces a user agent to family:major.
func NormalizeUA(raw string) string {
	if raw == "" {
		return "ua:none"
	}
	ua := strings.ToLower(raw)

	var family string
	switch {
	case strings.Contains(ua, "edg/"):
		family = "edge"
	case strings.Contains(ua, "chrome"):
		family = "chrome"
	case strings.Contains(ua, "firefox"):
		family = "firefox"
	case strings.Contains(ua, "safari"):
		family = "safari"
	case strings.Contains(ua, "curl"):
		family = "curl"
	case strings.Contains(ua, "postman"):
		family = "postman"
	default:
		family = "other"
	}

	version := "0"
	if re, ok := uaVersions[family]; ok {
		if match := re.FindStringSubmatch(ua); match != nil {
			version = match[1]
		}
	}

	return family + ":" + version
}
