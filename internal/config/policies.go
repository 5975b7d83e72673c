package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LimitPolicy is a quota of calls per window.
type LimitPolicy struct {
	Quota  int           `yaml:"quota"`
	Window time.Duration `yaml:"window"`
}

// BreakerPolicy configures one circuit breaker.
type BreakerPolicy struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	ResetTimeout     time.Duration `yaml:"reset_timeout"`
}

// Policies groups the resilience tuning of the process.
type Policies struct {
	EntryLimit    LimitPolicy              `yaml:"entry_limit"`
	AccountLimit  LimitPolicy              `yaml:"account_limit"`
	CheckoutLimit LimitPolicy              `yaml:"checkout_limit"`
	Breakers      map[string]BreakerPolicy `yaml:"breakers"`
}

// DefaultPolicies mirrors the production defaults: a broad entry limit per
// IP/email, a tight 5 per 15 minutes per account for sensitive operations
// and a looser per-customer checkout limit.
func DefaultPolicies() Policies {
	return Policies{
		EntryLimit:    LimitPolicy{Quota: 20, Window: time.Minute},
		AccountLimit:  LimitPolicy{Quota: 5, Window: 15 * time.Minute},
		CheckoutLimit: LimitPolicy{Quota: 30, Window: 15 * time.Minute},
		Breakers: map[string]BreakerPolicy{
			"database": {FailureThreshold: 5, ResetTimeout: 30 * time.Second},
			"events":   {FailureThreshold: 3, ResetTimeout: 60 * time.Second},
			"external": {FailureThreshold: 5, ResetTimeout: 60 * time.Second},
		},
	}
}

// LoadPolicies reads a YAML policy file on top of DefaultPolicies. An empty
// path returns the defaults.
func LoadPolicies(path string) (Policies, error) {
	p := DefaultPolicies()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read %s: %w", path, err)
	}

	var file Policies
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return p, fmt.Errorf("parse %s: %w", path, err)
	}

	if file.EntryLimit.Quota > 0 && file.EntryLimit.Window > 0 {
		p.EntryLimit = file.EntryLimit
	}
	if file.AccountLimit.Quota > 0 && file.AccountLimit.Window > 0 {
		p.AccountLimit = file.AccountLimit
	}
	if file.CheckoutLimit.Quota > 0 && file.CheckoutLimit.Window > 0 {
		p.CheckoutLimit = file.CheckoutLimit
	}
	for name, b := range file.Breakers {
		if b.FailureThreshold <= 0 || b.ResetTimeout <= 0 {
			return p, fmt.Errorf("breaker %q: threshold and reset_timeout must be positive", name)
		}
		p.Breakers[name] = b
	}

	return p, nil
}
