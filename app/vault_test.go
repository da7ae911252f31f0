package app

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"testing"
	"time"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/coffertest"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/x/cash"
	"github.com/iov-one/coffer/x/custody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultPaymentFlow(t *testing.T) {
	bootstrap := coffertest.NewCondition()
	second := coffertest.NewCondition()
	third := coffertest.NewCondition()
	receiver := coffertest.NewCondition().Address()

	now := time.Unix(1600000000, 0)
	vault, err := NewVault(VaultOptions{
		Clock: func() time.Time { return now },
	})
	require.NoError(t, err)

	genesis := fmt.Sprintf(`{
		"conf": {
			"custody": {"owners": [%q]}
		},
		"cash": [
			{"address": %q, "balance": 10000}
		]
	}`, bootstrap.Address(), custody.VaultAddress())
	var opts coffer.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))
	require.NoError(t, vault.InitFromGenesis(opts))

	// a second genesis run must be refused
	err = vault.InitFromGenesis(opts)
	assert.True(t, errors.ErrState.Is(err))

	balance, err := vault.Balance(custody.VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)

	// complete the owner registry
	_, err = vault.Deliver(bootstrap, &coffertest.Tx{Msg: &custody.InitMsg{
		RequiredApprovals: 2,
		AdditionalOwners:  []coffer.Address{second.Address(), third.Address()},
		ApprovalWindow:    coffer.AsUnixDuration(time.Hour),
	}})
	require.NoError(t, err)

	cfg, err := vault.Config()
	require.NoError(t, err)
	assert.True(t, cfg.Initialized)
	assert.Len(t, cfg.Owners, 3)

	// propose a native payment
	res, err := vault.Deliver(bootstrap, &coffertest.Tx{Msg: &custody.CreateNativePaymentMsg{
		Amount:      100,
		Destination: receiver,
	}})
	require.NoError(t, err)
	proposalID := res.Data

	heightBefore := vault.Height()

	// a failed operation leaves no trace and no new version
	_, err = vault.Deliver(coffertest.NewCondition(), &coffertest.Tx{Msg: &custody.ApproveMsg{
		ProposalID: proposalID,
	}})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, heightBefore, vault.Height())

	// two approvals release the funds
	now = now.Add(10 * time.Second)
	_, err = vault.Deliver(second, &coffertest.Tx{Msg: &custody.ApproveMsg{ProposalID: proposalID}})
	require.NoError(t, err)

	p, err := vault.Proposal(proposalID)
	require.NoError(t, err)
	assert.False(t, p.Executed)

	now = now.Add(10 * time.Second)
	res, err = vault.Deliver(third, &coffertest.Tx{Msg: &custody.ApproveMsg{ProposalID: proposalID}})
	require.NoError(t, err)

	// the release is observable through the result tags
	tags := make(map[string]string)
	for _, tag := range res.Tags {
		tags[string(tag.Key)] = string(tag.Value)
	}
	assert.Equal(t, "custody/approve", tags["action"])
	assert.Equal(t, string(proposalID), tags["executed"])

	p, err = vault.Proposal(proposalID)
	require.NoError(t, err)
	assert.True(t, p.Executed)

	balance, err = vault.Balance(receiver)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
	balance, err = vault.Balance(custody.VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(9900), balance)
	assert.Equal(t, heightBefore+2, vault.Height())

	ids, props, err := vault.ListProposals()
	require.NoError(t, err)
	require.Len(t, ids, 1)
	require.Len(t, props, 1)
	assert.Equal(t, proposalID, ids[0])
}

func TestVaultTokenPaymentFlow(t *testing.T) {
	bootstrap := coffertest.NewCondition()
	second := coffertest.NewCondition()
	asset := coffertest.NewCondition().Address()
	receiver := coffertest.NewCondition().Address()

	now := time.Unix(1600000000, 0)
	vault, err := NewVault(VaultOptions{
		Clock: func() time.Time { return now },
	})
	require.NoError(t, err)

	genesis := fmt.Sprintf(`{
		"conf": {
			"custody": {"owners": [%q]}
		}
	}`, bootstrap.Address())
	var opts coffer.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))
	require.NoError(t, vault.InitFromGenesis(opts))

	_, err = vault.Deliver(bootstrap, &coffertest.Tx{Msg: &custody.InitMsg{
		RequiredApprovals: 1,
		AdditionalOwners:  []coffer.Address{second.Address()},
		ApprovalWindow:    coffer.AsUnixDuration(time.Hour),
	}})
	require.NoError(t, err)

	require.NoError(t, vault.RecordTokenDeposit(asset, custody.VaultAddress(), 500))

	res, err := vault.Deliver(bootstrap, &coffertest.Tx{Msg: &custody.CreateTokenPaymentMsg{
		Asset:       asset,
		Amount:      120,
		Destination: receiver,
	}})
	require.NoError(t, err)

	_, err = vault.Deliver(second, &coffertest.Tx{Msg: &custody.ApproveMsg{ProposalID: res.Data}})
	require.NoError(t, err)

	held, err := vault.TokenBalance(asset, receiver)
	require.NoError(t, err)
	assert.Equal(t, int64(120), held)
	held, err = vault.TokenBalance(asset, custody.VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(380), held)
}

func TestVaultNativeDeposit(t *testing.T) {
	bootstrap := coffertest.NewCondition()
	sender := coffertest.NewCondition()

	vault, err := NewVault(VaultOptions{})
	require.NoError(t, err)

	genesis := fmt.Sprintf(`{
		"conf": {
			"custody": {"owners": [%q]}
		}
	}`, bootstrap.Address())
	var opts coffer.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))
	require.NoError(t, vault.InitFromGenesis(opts))

	// anyone can deposit, no owner seat required
	_, err = vault.Deliver(sender, &coffertest.Tx{Msg: &cash.DepositMsg{
		Destination: custody.VaultAddress(),
		Amount:      250,
	}})
	require.NoError(t, err)

	balance, err := vault.Balance(custody.VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)
}

func TestVaultRestartKeepsState(t *testing.T) {
	bootstrap := coffertest.NewCondition()

	dir, err := ioutil.TempDir("", "vault")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	vault, err := NewVault(VaultOptions{HomeDir: dir})
	require.NoError(t, err)

	genesis := fmt.Sprintf(`{
		"conf": {
			"custody": {"owners": [%q]}
		},
		"cash": [
			{"address": %q, "balance": 10000}
		]
	}`, bootstrap.Address(), custody.VaultAddress())
	var opts coffer.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))
	require.NoError(t, vault.InitFromGenesis(opts))

	_, err = vault.Deliver(bootstrap, &coffertest.Tx{Msg: &custody.InitMsg{
		RequiredApprovals: 1,
		ApprovalWindow:    coffer.AsUnixDuration(time.Hour),
	}})
	require.NoError(t, err)
	height := vault.Height()
	vault.Close()

	// a fresh instance over the same directory continues where the last
	// run stopped
	reborn, err := NewVault(VaultOptions{HomeDir: dir})
	require.NoError(t, err)
	defer reborn.Close()
	assert.Equal(t, height, reborn.Height())

	cfg, err := reborn.Config()
	require.NoError(t, err)
	assert.True(t, cfg.Initialized)

	balance, err := reborn.Balance(custody.VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)

	// and refuses a second genesis
	err = reborn.InitFromGenesis(opts)
	assert.True(t, errors.ErrState.Is(err))
}

func TestVaultCheckDoesNotPersist(t *testing.T) {
	bootstrap := coffertest.NewCondition()

	vault, err := NewVault(VaultOptions{})
	require.NoError(t, err)

	genesis := fmt.Sprintf(`{
		"conf": {
			"custody": {"owners": [%q]}
		}
	}`, bootstrap.Address())
	var opts coffer.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))
	require.NoError(t, vault.InitFromGenesis(opts))

	heightBefore := vault.Height()
	res, err := vault.Check(nil, &coffertest.Tx{Msg: &cash.DepositMsg{
		Destination: custody.VaultAddress(),
		Amount:      250,
	}})
	require.NoError(t, err)
	assert.True(t, res.GasAllocated > 0)
	assert.Equal(t, heightBefore, vault.Height())

	balance, err := vault.Balance(custody.VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}
