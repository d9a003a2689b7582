package asset

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	pathAdd    = "asset/add"
	pathRemove = "asset/remove"
)

// AddMsg creates or updates a supported asset. HourlyLimit must be greater
// than zero, an asset that may not be withdrawn at all is removed with
// RemoveMsg instead. Decimals may not exceed MaxDecimals.
type AddMsg struct {
	Asset       custody.Address `json:"asset"`
	HourlyLimit uint64          `json:"hourly_limit"`
	Decimals    uint32          `json:"decimals"`
}

var _ custody.Msg = AddMsg{}

// Path returns the routing path for this message.
func (AddMsg) Path() string { return pathAdd }

// Validate ensures the message describes a valid asset.
func (m AddMsg) Validate() error {
	return m.Token().Validate()
}

// Token returns the descriptor this message stores.
func (m AddMsg) Token() *Token {
	return &Token{
		Metadata:    custody.Metadata{Schema: 1},
		ID:          m.Asset,
		HourlyLimit: m.HourlyLimit,
		Decimals:    m.Decimals,
	}
}

// RemoveMsg removes an asset from the registry.
type RemoveMsg struct {
	Asset custody.Address `json:"asset"`
}

var _ custody.Msg = RemoveMsg{}

// Path returns the routing path for this message.
func (RemoveMsg) Path() string { return pathRemove }

// Validate ensures the asset identifier is well formed.
func (m RemoveMsg) Validate() error {
	return errors.Field("Asset", m.Asset.Validate(), "invalid asset")
}
