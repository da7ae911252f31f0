package gconf

import (
	"encoding/json"
	"testing"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Threshold uint32 `json:"threshold"`
}

func (c *testConfig) Marshal() ([]byte, error)   { return json.Marshal(c) }
func (c *testConfig) Unmarshal(raw []byte) error { return json.Unmarshal(raw, c) }
func (c *testConfig) Validate() error {
	if c.Threshold == 0 {
		return errors.Wrap(errors.ErrMsg, "zero threshold")
	}
	return nil
}

func TestSaveAndLoad(t *testing.T) {
	db := store.MemStore()

	require.NoError(t, Save(db, "testpkg", &testConfig{Threshold: 4}))

	var c testConfig
	require.NoError(t, Load(db, "testpkg", &c))
	assert.Equal(t, uint32(4), c.Threshold)
}

func TestSaveValidates(t *testing.T) {
	db := store.MemStore()
	err := Save(db, "testpkg", &testConfig{Threshold: 0})
	assert.True(t, errors.ErrMsg.Is(err))
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var c testConfig
	err := Load(db, "testpkg", &c)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestInitConfig(t *testing.T) {
	db := store.MemStore()
	opts := coffer.Options{
		"conf": json.RawMessage(`{"testpkg": {"threshold": 3}}`),
	}

	var c testConfig
	require.NoError(t, InitConfig(db, opts, "testpkg", &c))

	var loaded testConfig
	require.NoError(t, Load(db, "testpkg", &loaded))
	assert.Equal(t, uint32(3), loaded.Threshold)
}

func TestInitConfigMissingPackage(t *testing.T) {
	db := store.MemStore()
	opts := coffer.Options{
		"conf": json.RawMessage(`{"otherpkg": {}}`),
	}

	var c testConfig
	err := InitConfig(db, opts, "testpkg", &c)
	assert.True(t, errors.ErrNotFound.Is(err))
}
