package custody

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

const (
	pathInit                = "custody/init"
	pathCreateNativePayment = "custody/create_native_payment"
	pathCreateTokenPayment  = "custody/create_token_payment"
	pathApprove             = "custody/approve"
	pathRotateOwner         = "custody/rotate_owner"
)

var _ coffer.Msg = (*InitMsg)(nil)

// Path returns the routing path for this message.
func (InitMsg) Path() string {
	return pathInit
}

// Validate makes sure that this is sensible. The threshold upper bound is
// checked against the final owner set, which is one more than the
// additional owners listed here.
func (m *InitMsg) Validate() error {
	if m.RequiredApprovals < 1 || int(m.RequiredApprovals) > 1+len(m.AdditionalOwners) {
		return errors.Wrapf(errors.ErrMsg, "required approvals out of range: %d", m.RequiredApprovals)
	}
	if m.ApprovalWindow <= 0 {
		return errors.Wrap(errors.ErrMsg, "non-positive approval window")
	}
	for i, owner := range m.AdditionalOwners {
		if err := owner.Validate(); err != nil {
			return errors.Wrapf(err, "owner #%d", i)
		}
		for _, other := range m.AdditionalOwners[:i] {
			if owner.Equals(other) {
				return errors.Wrapf(errors.ErrDuplicate, "owner %s", owner)
			}
		}
	}
	return nil
}

var _ coffer.Msg = (*CreateNativePaymentMsg)(nil)

// Path returns the routing path for this message.
func (CreateNativePaymentMsg) Path() string {
	return pathCreateNativePayment
}

// Validate makes sure that this is sensible.
func (m *CreateNativePaymentMsg) Validate() error {
	if m.Amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return nil
}

var _ coffer.Msg = (*CreateTokenPaymentMsg)(nil)

// Path returns the routing path for this message.
func (CreateTokenPaymentMsg) Path() string {
	return pathCreateTokenPayment
}

// Validate makes sure that this is sensible.
func (m *CreateTokenPaymentMsg) Validate() error {
	if err := m.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if m.Amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return nil
}

var _ coffer.Msg = (*ApproveMsg)(nil)

// Path returns the routing path for this message.
func (ApproveMsg) Path() string {
	return pathApprove
}

// Validate makes sure that this is sensible.
func (m *ApproveMsg) Validate() error {
	if len(m.ProposalID) != 8 {
		return errors.Wrapf(errors.ErrInput, "proposal id must be 8 bytes, got %d", len(m.ProposalID))
	}
	return nil
}

var _ coffer.Msg = (*RotateOwnerMsg)(nil)

// Path returns the routing path for this message.
func (RotateOwnerMsg) Path() string {
	return pathRotateOwner
}

// Validate makes sure that this is sensible.
func (m *RotateOwnerMsg) Validate() error {
	if err := m.NewOwner.Validate(); err != nil {
		return errors.Wrap(err, "new owner")
	}
	return nil
}
