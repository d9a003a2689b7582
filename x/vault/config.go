package vault

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x/committee"
	"github.com/iov-one/custody/x/ratelimit"
)

const confPkg = "vault"

// Configuration of the vault, stored with gconf.
type Configuration struct {
	Metadata custody.Metadata `json:"metadata"`
	// DomainID separates signatures of different deployments.
	DomainID uint64 `json:"domain_id"`
	// Instance is the address of this service instance. It holds the
	// vault funds and is part of every withdrawal digest.
	Instance custody.Address `json:"instance"`
	// WindowSeconds is the length of a rate limit window.
	WindowSeconds int64 `json:"window_seconds"`
	// Threshold is the share of committee power that must sign a
	// withdrawal.
	Threshold custody.Fraction `json:"threshold"`
	// SignatureOrder is the committee member matching mode.
	SignatureOrder committee.SignatureOrder `json:"signature_order"`
	// NativeAsset is the identifier of the native asset.
	NativeAsset custody.Address `json:"native_asset"`
}

// DefaultConfiguration returns a configuration with every optional field
// set. DomainID and Instance must still be provided.
func DefaultConfiguration() Configuration {
	return Configuration{
		Metadata:       custody.Metadata{Schema: 1},
		WindowSeconds:  ratelimit.DefaultWindowSeconds,
		Threshold:      custody.Fraction{Numerator: 3, Denominator: 3},
		SignatureOrder: committee.Ascending,
		NativeAsset:    custody.ZeroAddress(),
	}
}

// Validate ensures the configuration is complete.
func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if c.DomainID == 0 {
		errs = errors.AppendField(errs, "DomainID", errors.ErrEmpty)
	}
	if err := c.Instance.Validate(); err != nil {
		errs = errors.AppendField(errs, "Instance", err)
	} else if c.Instance.IsZero() {
		errs = errors.AppendField(errs, "Instance", errors.ErrEmpty)
	}
	if c.WindowSeconds <= 0 {
		errs = errors.AppendField(errs, "WindowSeconds", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Threshold", c.Threshold.Validate())
	errs = errors.AppendField(errs, "SignatureOrder", c.SignatureOrder.Validate())
	errs = errors.AppendField(errs, "NativeAsset", c.NativeAsset.Validate())
	return errs
}

// VerifyOptions returns the signature verification settings.
func (c *Configuration) VerifyOptions() committee.VerifyOptions {
	return committee.VerifyOptions{
		Threshold: c.Threshold,
		Order:     c.SignatureOrder,
	}
}

// LoadConfig returns the stored vault configuration.
func LoadConfig(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "vault configuration")
	}
	return &conf, nil
}
