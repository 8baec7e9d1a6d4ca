// Package builder runs the control loop that keeps the chain tip in
// sync with storage, validates announced headers and blocks, and
// publishes new candidate headers for miners.
package builder

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/earthbucks/earthbucks-go/internal/keys"
)

// Config carries the named values the external CLI passes to the core.
type Config struct {
	Domain        string
	DomainPrivKey *keys.PrivKey
	DomainKeyPair *keys.KeyPair
	CoinbasePkh   *keys.Pkh
	AdminPubKey   *keys.PubKey
	DatabaseURL   string
}

var domainLabelRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// IsValidDomain checks a bare DNS name: dotted lowercase labels, no
// scheme, at least two labels.
func IsValidDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) > 63 || !domainLabelRe.MatchString(label) {
			return false
		}
	}
	return true
}

// NewConfig validates the raw values into a Config.
func NewConfig(domain, domainPrivKeyHex, coinbasePkhHex, adminPubKeyHex, databaseURL string) (*Config, error) {
	if !IsValidDomain(domain) {
		return nil, fmt.Errorf("invalid domain %q", domain)
	}
	domainPrivKey, err := keys.PrivKeyFromHex(domainPrivKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid domain priv key: %w", err)
	}
	domainKeyPair, err := keys.KeyPairFromPrivKey(domainPrivKey)
	if err != nil {
		return nil, fmt.Errorf("invalid domain key pair: %w", err)
	}
	coinbasePkh, err := keys.PkhFromHex(coinbasePkhHex)
	if err != nil {
		return nil, fmt.Errorf("invalid coinbase pkh: %w", err)
	}
	adminPubKey, err := keys.PubKeyFromHex(adminPubKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid admin pub key: %w", err)
	}
	if databaseURL == "" {
		return nil, errors.New("missing database URL")
	}
	return &Config{
		Domain:        domain,
		DomainPrivKey: domainPrivKey,
		DomainKeyPair: domainKeyPair,
		CoinbasePkh:   coinbasePkh,
		AdminPubKey:   adminPubKey,
		DatabaseURL:   databaseURL,
	}, nil
}
