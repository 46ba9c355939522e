package types

import (
	"fmt"

	ssz "github.com/ferranbt/fastssz"
)

// MaxManifestContracts bounds the contract list of a Manifest, and so the
// number of compile jobs in one build.
const MaxManifestContracts = 256

// ContractEntry binds a contract key to the hash of its runtime code.
type ContractEntry struct {
	KeyHash  Root `ssz-size:"32"`
	CodeHash Root `ssz-size:"32"`
}

// Manifest summarises a genesis descriptor. Its hash tree root is the
// descriptor fingerprint; Contracts must be sorted by key before hashing.
type Manifest struct {
	ChainID          uint64
	ExtraDataHash    Root            `ssz-size:"32"`
	ValidatorSetHash Root            `ssz-size:"32"`
	HoldersHash      Root            `ssz-size:"32"`
	MembersHash      Root            `ssz-size:"32"`
	Contracts        []ContractEntry `ssz-max:"256"`
}

// HashTreeRoot ssz hashes the ContractEntry object
func (c *ContractEntry) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(c)
}

// HashTreeRootWith ssz hashes the ContractEntry object with a hasher
func (c *ContractEntry) HashTreeRootWith(hh ssz.HashWalker) (err error) {
	indx := hh.Index()

	// Field (0) 'KeyHash'
	hh.PutBytes(c.KeyHash[:])

	// Field (1) 'CodeHash'
	hh.PutBytes(c.CodeHash[:])

	hh.Merkleize(indx)
	return
}

// GetTree ssz hashes the ContractEntry object
func (c *ContractEntry) GetTree() (*ssz.Node, error) {
	return ssz.ProofTree(c)
}

// HashTreeRoot ssz hashes the Manifest object
func (m *Manifest) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(m)
}

// HashTreeRootWith ssz hashes the Manifest object with a hasher
func (m *Manifest) HashTreeRootWith(hh ssz.HashWalker) (err error) {
	indx := hh.Index()

	// Field (0) 'ChainID'
	hh.PutUint64(m.ChainID)

	// Field (1) 'ExtraDataHash'
	hh.PutBytes(m.ExtraDataHash[:])

	// Field (2) 'ValidatorSetHash'
	hh.PutBytes(m.ValidatorSetHash[:])

	// Field (3) 'HoldersHash'
	hh.PutBytes(m.HoldersHash[:])

	// Field (4) 'MembersHash'
	hh.PutBytes(m.MembersHash[:])

	// Field (5) 'Contracts'
	{
		subIndx := hh.Index()
		num := uint64(len(m.Contracts))
		if num > MaxManifestContracts {
			return fmt.Errorf("manifest: %d contracts exceeds limit %d", num, MaxManifestContracts)
		}
		for i := range m.Contracts {
			if err = m.Contracts[i].HashTreeRootWith(hh); err != nil {
				return
			}
		}
		hh.MerkleizeWithMixin(subIndx, num, MaxManifestContracts)
	}

	hh.Merkleize(indx)
	return
}

// GetTree ssz hashes the Manifest object
func (m *Manifest) GetTree() (*ssz.Node, error) {
	return ssz.ProofTree(m)
}
