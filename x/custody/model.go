package custody

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/orm"
)

// VaultCondition is the identity holding all funds managed by this package.
// There is a single vault per deployment.
func VaultCondition() coffer.Condition {
	return coffer.NewCondition("custody", "vault", []byte("main"))
}

// VaultAddress is the address form of the vault condition.
func VaultAddress() coffer.Address {
	return VaultCondition().Address()
}

var _ orm.Model = (*Config)(nil)

// Validate enforces the owner registry invariants. Before initialization
// only the bootstrap owner is present and no threshold is set.
func (c *Config) Validate() error {
	if len(c.Owners) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no owners")
	}
	for i, owner := range c.Owners {
		if err := owner.Validate(); err != nil {
			return errors.Wrapf(err, "owner #%d", i)
		}
		for _, other := range c.Owners[:i] {
			if owner.Equals(other) {
				return errors.Wrapf(errors.ErrDuplicate, "owner %s", owner)
			}
		}
	}
	if !c.Initialized {
		if c.RequiredApprovals != 0 || c.ApprovalWindow != 0 {
			return errors.Wrap(errors.ErrState, "config set before initialization")
		}
		return nil
	}
	if c.RequiredApprovals < 1 || int(c.RequiredApprovals) > len(c.Owners) {
		return errors.Wrapf(errors.ErrMsg, "required approvals out of range: %d", c.RequiredApprovals)
	}
	if c.ApprovalWindow <= 0 {
		return errors.Wrap(errors.ErrMsg, "non-positive approval window")
	}
	return nil
}

// Copy makes a deep copy of the configuration.
func (c *Config) Copy() orm.CloneableData {
	owners := make([]coffer.Address, len(c.Owners))
	for i, o := range c.Owners {
		owners[i] = append(coffer.Address{}, o...)
	}
	return &Config{
		Owners:            owners,
		RequiredApprovals: c.RequiredApprovals,
		ApprovalWindow:    c.ApprovalWindow,
		Initialized:       c.Initialized,
	}
}

// IsOwner returns true if the address holds an owner seat. The owner set is
// small by design, a linear scan is good enough.
func (c *Config) IsOwner(addr coffer.Address) bool {
	return c.OwnerIndex(addr) != -1
}

// OwnerIndex returns the seat position of the address, or -1 when the
// address is not an owner.
func (c *Config) OwnerIndex(addr coffer.Address) int {
	for i, owner := range c.Owners {
		if owner.Equals(addr) {
			return i
		}
	}
	return -1
}

var _ orm.Model = (*Proposal)(nil)

// Validate enforces the transaction record invariants.
func (p *Proposal) Validate() error {
	if err := p.Initiator.Validate(); err != nil {
		return errors.Wrap(err, "initiator")
	}
	if p.CreatedAt.IsZero() {
		return errors.Wrap(errors.ErrEmpty, "missing creation time")
	}
	if err := p.CreatedAt.Validate(); err != nil {
		return errors.Wrap(err, "creation time")
	}
	// an empty asset means a native payment
	if len(p.Asset) != 0 {
		if err := p.Asset.Validate(); err != nil {
			return errors.Wrap(err, "asset")
		}
	}
	if p.Amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := p.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	for i, a := range p.Approvals {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "approval #%d", i)
		}
		for _, other := range p.Approvals[:i] {
			if a.Equals(other) {
				return errors.Wrapf(errors.ErrDuplicate, "approval %s", a)
			}
		}
	}
	return nil
}

// Copy makes a deep copy of the proposal.
func (p *Proposal) Copy() orm.CloneableData {
	approvals := make([]coffer.Address, len(p.Approvals))
	for i, a := range p.Approvals {
		approvals[i] = append(coffer.Address{}, a...)
	}
	return &Proposal{
		Initiator:   append(coffer.Address{}, p.Initiator...),
		CreatedAt:   p.CreatedAt,
		Asset:       append(coffer.Address{}, p.Asset...),
		Amount:      p.Amount,
		Destination: append(coffer.Address{}, p.Destination...),
		Approvals:   approvals,
		Executed:    p.Executed,
	}
}

// IsNative returns true when the proposal pays out the native asset.
func (p *Proposal) IsNative() bool {
	return len(p.Asset) == 0
}

// HasApproval returns true if the given address already voted. Votes stay
// recorded even when the voter rotates out of the owner set.
func (p *Proposal) HasApproval(addr coffer.Address) bool {
	for _, a := range p.Approvals {
		if a.Equals(addr) {
			return true
		}
	}
	return false
}

// Deadline returns the last moment at which the proposal still accepts
// approvals.
func (p *Proposal) Deadline(window coffer.UnixDuration) coffer.UnixTime {
	return p.CreatedAt.Add(window.Duration())
}

// NewProposalBucket returns the bucket keeping all proposals, keyed by a
// monotonically assigned sequence id.
func NewProposalBucket() orm.ModelBucket {
	return orm.NewModelBucket("prps", &Proposal{})
}
