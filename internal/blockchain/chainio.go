// Copyright (c) 2021-2022 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/wire"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// currentBlockDatabaseVersion indicates the current block database
	// version.
	currentBlockDatabaseVersion = 1

	// blockDbName is the name of the block database.
	blockDbName = "blocks_leveldb"

	// blockHdrEntrySize is the size of a serialized header entry.  It
	// consists of the serialized block header followed by the height of the
	// block as a little-endian uint32.
	blockHdrEntrySize = wire.MaxBlockHeaderPayload + 4
)

// -----------------------------------------------------------------------------
// blockKeySet represents a top level key set in the block database.  All keys
// in the database start with a serialized prefix consisting of the key set and
// version of that key set as follows:
//
//	<key set><version>
//
//	Key        Value    Size      Description
//	key set    uint8    1 byte    The key set identifier, as defined below
//	version    uint8    1 byte    The version of the key set
//
// -----------------------------------------------------------------------------
type blockKeySet uint8

// These constants define the available block database key sets.
const (
	blockKeySetDbInfo     blockKeySet = iota + 1 // 1
	blockKeySetHeaders                           // 2
	blockKeySetAuxParents                        // 3
	blockKeySetMeta                              // 4
)

// blockKeySetNoVersion defines the value to be used for the version of key
// sets where versioning does not apply.
const blockKeySetNoVersion = 0

// blockKeySetVersions defines the current version for each block database key
// set.
var blockKeySetVersions = map[blockKeySet]uint8{
	blockKeySetDbInfo:     blockKeySetNoVersion,
	blockKeySetHeaders:    1,
	blockKeySetAuxParents: 1,
	blockKeySetMeta:       1,
}

// These variables define the serialized prefix for each key set and associated
// version.
var (
	// blockPrefixDbInfo is the prefix for all keys in the database info key
	// set.
	blockPrefixDbInfo = []byte{byte(blockKeySetDbInfo),
		blockKeySetVersions[blockKeySetDbInfo]}

	// blockPrefixHeaders is the prefix for all keys in the header key set.
	// The keys are block hashes.
	blockPrefixHeaders = []byte{byte(blockKeySetHeaders),
		blockKeySetVersions[blockKeySetHeaders]}

	// blockPrefixAuxParents is the prefix for all keys in the used auxpow
	// parent key set.  The keys are parent block hashes and the values are
	// the hashes of the blocks they secured.
	blockPrefixAuxParents = []byte{byte(blockKeySetAuxParents),
		blockKeySetVersions[blockKeySetAuxParents]}

	// blockPrefixMeta is the prefix for all keys in the chain metadata key
	// set.
	blockPrefixMeta = []byte{byte(blockKeySetMeta),
		blockKeySetVersions[blockKeySetMeta]}
)

// prefixedKey returns a new byte slice that consists of the provided prefix
// appended with the provided key.
func prefixedKey(prefix []byte, key []byte) []byte {
	lenPrefix := len(prefix)
	prefixedKey := make([]byte, lenPrefix+len(key))
	_ = copy(prefixedKey, prefix)
	_ = copy(prefixedKey[lenPrefix:], key)
	return prefixedKey
}

// These variables define keys that are part of the database info and metadata
// key sets.
var (
	// blockDbInfoVersionKey is the database key used to house the database
	// version.
	blockDbInfoVersionKey = prefixedKey(blockPrefixDbInfo, []byte("version"))

	// blockDbInfoCreatedKey is the database key used to house the date the
	// database was created.
	blockDbInfoCreatedKey = prefixedKey(blockPrefixDbInfo, []byte("created"))

	// blockMetaTipKey is the database key used to house the hash of the tip
	// of the best chain.
	blockMetaTipKey = prefixedKey(blockPrefixMeta, []byte("tip"))
)

// StoredBlock is a block header persisted in the block database along with the
// data needed to rebuild its block index entry.
type StoredBlock struct {
	Header wire.BlockHeader
	Height int64

	// AuxParent is the parent block hash of the auxiliary proof of work that
	// secured the block.  It is nil for blocks without one.
	AuxParent *chainhash.Hash
}

// Store represents a persistent storage layer for the block index, the tip of
// the best chain, and the used auxiliary proof of work parent blocks.
//
// The interface contract requires that all of these methods are safe for
// concurrent access.
type Store interface {
	// InitInfo loads (or creates if necessary) the versioning information of
	// the store.  It returns an error when the store was created by newer
	// software.
	InitInfo() error

	// FetchTip returns the hash of the tip of the best chain.  It returns nil
	// for both the hash and the error when the store is empty.
	FetchTip() (*chainhash.Hash, error)

	// FetchBlocks returns every stored block ordered by height.
	FetchBlocks() ([]StoredBlock, error)

	// FetchUsedParents returns the parent block hashes of every stored
	// auxiliary proof of work.
	FetchUsedParents() ([]chainhash.Hash, error)

	// PutBlock atomically stores the provided block and, when it has one,
	// the parent block of its auxiliary proof of work.  The tip of the best
	// chain is updated to the block when isTip is set.
	PutBlock(block *StoredBlock, isTip bool) error
}

// levelDbStore implements the Store interface using an underlying leveldb
// database instance.
type levelDbStore struct {
	// db is the database that contains the blocks.  It is set when the
	// instance is created and is not changed afterward.
	db *leveldb.DB
}

// Ensure levelDbStore implements the Store interface.
var _ Store = (*levelDbStore)(nil)

// convertLdbErr converts the passed leveldb error into a context error with an
// equivalent error kind and the passed description.  It also sets the passed
// error as the underlying error and adds its error string to the description.
func convertLdbErr(ldbErr error, desc string) ContextError {
	// Use the general I/O error kind by default.  The code below will update
	// this with the converted error if it's recognized.
	var kind = ErrDBIO

	switch {
	// Database corruption errors.
	case ldberrors.IsCorrupted(ldbErr):
		kind = ErrDBCorruption

	// Database open/create errors.
	case errors.Is(ldbErr, leveldb.ErrClosed):
		kind = ErrDBClosed
	}

	// Include the original error in description.
	desc = fmt.Sprintf("%s: %v", desc, ldbErr)

	err := contextError(kind, desc)
	err.RawErr = ldbErr

	return err
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// LoadBlockDB loads (or creates when needed) the block database for the
// network described by the provided parameters and returns a handle to it.
func LoadBlockDB(params *chaincfg.Params, dataDir string) (*leveldb.DB, error) {
	// The database lives in a network specific directory under the data
	// directory.
	dbPath := filepath.Join(dataDir, params.Name, blockDbName)

	// Ensure the full path to the database exists.
	dbExists := fileExists(dbPath)
	if !dbExists {
		// The error can be ignored here since the call to leveldb.OpenFile will
		// fail if the directory couldn't be created.
		_ = os.MkdirAll(filepath.Dir(dbPath), 0700)
	}

	// Open the database (will create it if needed).
	log.Infof("Loading block database from '%s'", dbPath)
	opts := opt.Options{
		ErrorIfExist: !dbExists,
		Strict:       opt.DefaultStrict,
		Compression:  opt.NoCompression,
		Filter:       filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		return nil, convertLdbErr(err, "failed to open block database")
	}

	log.Info("Block database loaded")

	return db, nil
}

// NewLevelDbStore returns a new instance of a store that uses the provided
// leveldb database for its underlying storage.
func NewLevelDbStore(db *leveldb.DB) Store {
	return &levelDbStore{
		db: db,
	}
}

// get gets the value for the given key from the leveldb database.  It returns
// nil for both the value and the error if the database does not contain the
// key.
func (l *levelDbStore) get(key []byte) ([]byte, error) {
	serialized, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		str := fmt.Sprintf("failed to get key %x from leveldb", key)
		return nil, convertLdbErr(err, str)
	}
	return serialized, nil
}

// InitInfo loads (or creates if necessary) the versioning information of the
// store.
//
// This function is part of the Store interface.
func (l *levelDbStore) InitInfo() error {
	serialized, err := l.get(blockDbInfoVersionKey)
	if err != nil {
		return err
	}

	// Write the versioning info when the database was just created.
	if serialized == nil {
		batch := new(leveldb.Batch)
		var version [4]byte
		binary.LittleEndian.PutUint32(version[:], currentBlockDatabaseVersion)
		batch.Put(blockDbInfoVersionKey, version[:])
		var created [8]byte
		binary.LittleEndian.PutUint64(created[:], uint64(time.Now().Unix()))
		batch.Put(blockDbInfoCreatedKey, created[:])
		if err := l.db.Write(batch, nil); err != nil {
			return convertLdbErr(err, "failed to store database info")
		}
		return nil
	}

	if len(serialized) != 4 {
		str := fmt.Sprintf("malformed database version of %d bytes",
			len(serialized))
		return contextError(ErrDBCorruption, str)
	}
	version := binary.LittleEndian.Uint32(serialized)
	if version > currentBlockDatabaseVersion {
		str := fmt.Sprintf("the current block database is no longer "+
			"compatible with this version of the software (%d > %d)",
			version, currentBlockDatabaseVersion)
		return contextError(ErrDBCorruption, str)
	}

	log.Debugf("Block database version %d", version)
	return nil
}

// FetchTip returns the hash of the tip of the best chain.
//
// This function is part of the Store interface.
func (l *levelDbStore) FetchTip() (*chainhash.Hash, error) {
	serialized, err := l.get(blockMetaTipKey)
	if err != nil {
		return nil, err
	}
	if serialized == nil {
		return nil, nil
	}

	var hash chainhash.Hash
	if err := hash.SetBytes(serialized); err != nil {
		str := fmt.Sprintf("malformed best chain tip: %v", err)
		return nil, contextError(ErrDBCorruption, str)
	}
	return &hash, nil
}

// serializeHdrEntry returns the serialized header entry for the provided block.
func serializeHdrEntry(block *StoredBlock) ([]byte, error) {
	headerBytes, err := block.Header.Bytes()
	if err != nil {
		return nil, err
	}
	serialized := make([]byte, blockHdrEntrySize)
	copy(serialized, headerBytes)
	binary.LittleEndian.PutUint32(serialized[wire.MaxBlockHeaderPayload:],
		uint32(block.Height))
	return serialized, nil
}

// deserializeHdrEntry decodes the provided serialized header entry.
func deserializeHdrEntry(serialized []byte) (*StoredBlock, error) {
	if len(serialized) != blockHdrEntrySize {
		str := fmt.Sprintf("unexpected header entry size - got %d, want %d",
			len(serialized), blockHdrEntrySize)
		return nil, contextError(ErrDBCorruption, str)
	}

	var block StoredBlock
	err := block.Header.FromBytes(serialized[:wire.MaxBlockHeaderPayload])
	if err != nil {
		str := fmt.Sprintf("malformed header entry: %v", err)
		return nil, contextError(ErrDBCorruption, str)
	}
	heightBytes := serialized[wire.MaxBlockHeaderPayload:]
	block.Height = int64(binary.LittleEndian.Uint32(heightBytes))
	return &block, nil
}

// FetchBlocks returns every stored block ordered by height.
//
// This function is part of the Store interface.
func (l *levelDbStore) FetchBlocks() ([]StoredBlock, error) {
	// Load the used parents keyed by the block they secured.
	auxParents := make(map[chainhash.Hash]chainhash.Hash)
	iter := l.db.NewIterator(util.BytesPrefix(blockPrefixAuxParents), nil)
	for iter.Next() {
		parent, child, err := decodeAuxParentEntry(iter.Key(), iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		auxParents[child] = parent
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, convertLdbErr(err, "failed to iterate auxpow parents")
	}

	var blocks []StoredBlock
	iter = l.db.NewIterator(util.BytesPrefix(blockPrefixHeaders), nil)
	defer iter.Release()
	for iter.Next() {
		block, err := deserializeHdrEntry(iter.Value())
		if err != nil {
			return nil, err
		}

		// Ensure the entry is stored under the hash of its header.
		hash := block.Header.BlockHash()
		if !bytes.Equal(iter.Key()[len(blockPrefixHeaders):], hash[:]) {
			str := fmt.Sprintf("header entry for block %v is stored under "+
				"key %x", hash, iter.Key())
			return nil, contextError(ErrDBCorruption, str)
		}

		if parent, ok := auxParents[hash]; ok {
			parent := parent
			block.AuxParent = &parent
		}
		blocks = append(blocks, *block)
	}
	if err := iter.Error(); err != nil {
		return nil, convertLdbErr(err, "failed to iterate block headers")
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Height < blocks[j].Height
	})
	return blocks, nil
}

// decodeAuxParentEntry decodes the provided used parent key and value into the
// parent block hash and the hash of the block it secured.
func decodeAuxParentEntry(key, value []byte) (chainhash.Hash, chainhash.Hash, error) {
	var parent, child chainhash.Hash
	if err := parent.SetBytes(key[len(blockPrefixAuxParents):]); err != nil {
		str := fmt.Sprintf("malformed auxpow parent key %x", key)
		return parent, child, contextError(ErrDBCorruption, str)
	}
	if err := child.SetBytes(value); err != nil {
		str := fmt.Sprintf("malformed auxpow child hash %x for parent %v",
			value, parent)
		return parent, child, contextError(ErrDBCorruption, str)
	}
	return parent, child, nil
}

// FetchUsedParents returns the parent block hashes of every stored auxiliary
// proof of work.
//
// This function is part of the Store interface.
func (l *levelDbStore) FetchUsedParents() ([]chainhash.Hash, error) {
	var parents []chainhash.Hash
	iter := l.db.NewIterator(util.BytesPrefix(blockPrefixAuxParents), nil)
	defer iter.Release()
	for iter.Next() {
		parent, _, err := decodeAuxParentEntry(iter.Key(), iter.Value())
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	if err := iter.Error(); err != nil {
		return nil, convertLdbErr(err, "failed to iterate auxpow parents")
	}
	return parents, nil
}

// PutBlock atomically stores the provided block along with the parent block of
// its auxiliary proof of work and optionally marks it as the best chain tip.
//
// This function is part of the Store interface.
func (l *levelDbStore) PutBlock(block *StoredBlock, isTip bool) error {
	serialized, err := serializeHdrEntry(block)
	if err != nil {
		str := fmt.Sprintf("failed to serialize header at height %d: %v",
			block.Height, err)
		return contextError(ErrDBIO, str)
	}

	hash := block.Header.BlockHash()
	batch := new(leveldb.Batch)
	batch.Put(prefixedKey(blockPrefixHeaders, hash[:]), serialized)
	if block.AuxParent != nil {
		batch.Put(prefixedKey(blockPrefixAuxParents, block.AuxParent[:]),
			hash[:])
	}
	if isTip {
		batch.Put(blockMetaTipKey, hash[:])
	}
	if err := l.db.Write(batch, nil); err != nil {
		str := fmt.Sprintf("failed to store block %v", hash)
		return convertLdbErr(err, str)
	}
	return nil
}
