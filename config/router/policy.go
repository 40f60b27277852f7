package router

import (
	"strconv"
	"strings"

	"github.com/akeren/telecheck/pkg/utils"
)

const defaultMaxBodyBytes = 1 << 20

// httpPolicy is the environment-driven transport policy, read once at startup.
type httpPolicy struct {
	trustedProxies []string
	allowedOrigins []string
	maxBodyBytes   int64
	hsts           bool
	hstsValue      string
}

func loadHTTPPolicy() httpPolicy {
	p := httpPolicy{
		trustedProxies: parseTrustedProxies(utils.GetEnvTrimmed("TRUSTED_PROXIES")),
		allowedOrigins: utils.GetEnvList("CORS_ALLOWED_ORIGIN"),
		maxBodyBytes:   defaultMaxBodyBytes,
	}

	if raw := utils.GetEnvTrimmed("MAX_REQUEST_BODY_BYTES"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			p.maxBodyBytes = parsed
		}
	}

	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))
	p.hsts = utils.GetEnvBool("HSTS_ENABLED", appEnv == "production" || appEnv == "prod")

	maxAge := int64(31536000)
	if raw := utils.GetEnvTrimmed("HSTS_MAX_AGE"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxAge = parsed
		}
	}
	p.hstsValue = "max-age=" + strconv.FormatInt(maxAge, 10)
	if utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true) {
		p.hstsValue += "; includeSubDomains"
	}

	return p
}

// parseTrustedProxies returns nil (trust nobody) for an empty value and every
// address for "*".
func parseTrustedProxies(raw string) []string {
	if raw == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}
	proxies := utils.SplitList(raw)
	if len(proxies) == 0 {
		return nil
	}
	return proxies
}

func (p httpPolicy) originAllowed(origin string) bool {
	for _, allowed := range p.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
