package iavl

import (
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// cacheSize is the number of tree nodes held in memory.
const cacheSize = 10000

// CommitStore manages an iavl committed state backed by a leveldb database
// on disk. Every Commit persists a new version of the merkle tree, which is
// what gives crash consistency: a partially written version is never loaded.
type CommitStore struct {
	tree *iavl.MutableTree
	db   dbm.DB
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with disk backing in the given
// directory.
func NewCommitStore(dir, name string) *CommitStore {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		panic(err)
	}
	return &CommitStore{
		tree: iavl.NewMutableTree(db, cacheSize),
		db:   db,
	}
}

// MockCommitStore returns a disk-less commit store useful for tests.
func MockCommitStore() *CommitStore {
	db := dbm.NewMemDB()
	return &CommitStore{
		tree: iavl.NewMutableTree(db, cacheSize),
		db:   db,
	}
}

// Close releases the underlying database. The store must not be used
// afterwards.
func (s *CommitStore) Close() {
	s.db.Close()
}

// Get returns the value of the working state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	_, value := s.tree.Get(key)
	return value, nil
}

// CacheWrap returns a cache to perform writes on top of the working state.
// On Write the changes are applied to the tree, still pending the next
// Commit before they hit the disk.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	read := treeReader{tree: s.tree}
	batch := store.NewNonAtomicBatch(treeWriter{tree: s.tree})
	return store.NewBTreeCacheWrap(read, batch, nil)
}

// Commit persists the working state as the next version on disk and returns
// its info.
func (s *CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(err, "save version")
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version. If there was a crash
// during the last commit, it is guaranteed to return a stable state, even if
// older.
func (s *CommitStore) LoadLatestVersion() error {
	_, err := s.tree.Load()
	return errors.Wrap(err, "load tree")
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// treeReader adapts the working tree to the ReadOnlyKVStore interface so a
// btree cache can be layered on top of it.
type treeReader struct {
	tree *iavl.MutableTree
}

var _ store.ReadOnlyKVStore = treeReader{}

func (t treeReader) Get(key []byte) ([]byte, error) {
	_, value := t.tree.Get(key)
	return value, nil
}

func (t treeReader) Has(key []byte) (bool, error) {
	return t.tree.Has(key), nil
}

func (t treeReader) Iterator(start, end []byte) (store.Iterator, error) {
	return t.iterate(start, end, true), nil
}

func (t treeReader) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return t.iterate(start, end, false), nil
}

// iterate materializes the range scan. The iavl callback API does not allow
// pausing the scan, so the models are collected upfront. Ranges over this
// store are small (the proposal ledger and a handful of wallets).
func (t treeReader) iterate(start, end []byte, ascending bool) store.Iterator {
	var models []store.Model
	t.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		models = append(models, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(models)
}

// treeWriter applies writes to the working tree.
type treeWriter struct {
	tree *iavl.MutableTree
}

var _ store.SetDeleter = treeWriter{}

func (t treeWriter) Set(key, value []byte) error {
	t.tree.Set(key, value)
	return nil
}

func (t treeWriter) Delete(key []byte) error {
	t.tree.Remove(key)
	return nil
}
