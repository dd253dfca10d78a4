// Package allowlist gates account provisioning on the server-configured
// set of allowed email domains.
package allowlist

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

// ErrDomainNotAllowed is returned when an email's domain is not in the allow-list
var ErrDomainNotAllowed = errors.New("email domain is not allowed")

// IsAllowed reports whether email has a non-empty local part and a domain
// exactly equal to allowedDomain, compared case-insensitively.
func IsAllowed(email, allowedDomain string) bool {
	if email == "" || allowedDomain == "" {
		return false
	}
	pattern := `(?i)^[^\s@]+@` + regexp.QuoteMeta(allowedDomain) + `$`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(email)
}

// IsAllowedAny reports whether email matches any of the allowed domains
func IsAllowedAny(email string, domains []string) bool {
	for _, d := range domains {
		if IsAllowed(email, d) {
			return true
		}
	}
	return false
}

// DomainSource fetches the allowed domains for an account type
type DomainSource interface {
	AllowedDomains(ctx context.Context, accountType string) ([]string, error)
}

// Validator checks emails against the server-side allow-list, keeping the
// fetched list for a short time.
type Validator struct {
	source      DomainSource
	accountType string
	cache       *expirable.LRU[string, []string]
	logger      *logrus.Logger
}

// NewValidator creates a validator for accountType whose cached list expires after ttl
func NewValidator(source DomainSource, accountType string, ttl time.Duration, logger *logrus.Logger) *Validator {
	return &Validator{
		source:      source,
		accountType: accountType,
		cache:       expirable.NewLRU[string, []string](8, nil, ttl),
		logger:      logger,
	}
}

// Domains returns the allowed domains, fetching them when the cache is cold
func (v *Validator) Domains(ctx context.Context) ([]string, error) {
	if domains, ok := v.cache.Get(v.accountType); ok {
		return domains, nil
	}

	domains, err := v.source.AllowedDomains(ctx, v.accountType)
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed domains: %w", err)
	}

	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimPrefix(strings.TrimSpace(d), "@")
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	v.cache.Add(v.accountType, normalized)
	v.logger.WithFields(logrus.Fields{
		"type":    v.accountType,
		"domains": normalized,
	}).Debug("Loaded allowed domains")

	return normalized, nil
}

// Check returns nil when email is allowed, ErrDomainNotAllowed when it is
// not, or the error from loading the allow-list.
func (v *Validator) Check(ctx context.Context, email string) error {
	domains, err := v.Domains(ctx)
	if err != nil {
		return err
	}
	if !IsAllowedAny(email, domains) {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrDomainNotAllowed, email, strings.Join(domains, ", "))
	}
	return nil
}

// Invalidate drops the cached allow-list
func (v *Validator) Invalidate() {
	v.cache.Purge()
}
