// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package zkkeys manages the fixed table of proving and verification
// keys, sized by transaction shape, with a work-ordered fallback search
// and lazy file loading.
package zkkeys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/luxfi/cclib/snark"
)

// KeyPathEnvVar names the directory holding the key files.
const KeyPathEnvVar = "CC_PROOF_KEY_DIR"

var (
	ErrNoKey           = errors.New("no suitable proof key")
	ErrInsufficientKey = errors.New("proof key has insufficient capacity")
	ErrLoadingKey      = errors.New("error loading proof key")
)

// Entry describes one key slot: its id and the transaction shape it can
// prove.
type Entry struct {
	KeyID       uint
	Nout        uint16
	Nin         uint16
	NinWithPath uint16
	Work        uint
}

// Store is the process-lifetime key registry. All methods are safe for
// concurrent use; loaded keys are immutable.
type Store struct {
	mu sync.Mutex

	nproof     int
	nproofsave int
	keytable   []Entry
	workorder  []int

	provekeys  []*snark.ProveKey
	verifykeys []*snark.VerifyKey

	keyPath string
	log     *zap.Logger
}

// NewStore builds the key table. An empty keyPath defers to the
// environment, then to the default "zkkeys" directory.
func NewStore(keyPath string, log *zap.Logger) *Store {
	if keyPath == "" {
		keyPath = os.Getenv(KeyPathEnvVar)
	}
	if keyPath == "" {
		keyPath = "zkkeys"
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		nproof:     4*2 + 8,
		nproofsave: 8,
		keyPath:    keyPath,
		log:        log,
	}

	s.keytable = make([]Entry, s.nproof)
	s.workorder = make([]int, s.nproof)
	s.provekeys = make([]*snark.ProveKey, s.nproof)
	s.verifykeys = make([]*snark.VerifyKey, s.nproof)

	for i := 0; i < s.nproof; i++ {
		var nout, ninw uint16

		if i < 4*2 {
			ninw = uint16(i%4 + 1)
			nout = uint16((i/4)*3 + 2)
		} else {
			nout = 10
			ninw = uint16(i - 4*2 + 1)
		}

		e := &s.keytable[i]
		e.KeyID = uint(i)
		e.Nout = nout
		e.Nin = ninw
		e.NinWithPath = ninw

		nwo := uint(e.Nin - e.NinWithPath)
		e.Work = 12*uint(e.Nout) + 45*nwo + 114*uint(e.NinWithPath)

		j := i
		for ; j > 0 && s.keytable[s.workorder[j-1]].Work > e.Work; j-- {
			s.workorder[j] = s.workorder[j-1]
		}
		s.workorder[j] = i
	}

	return s
}

// NKeys returns the key table size.
func (s *Store) NKeys() int { return s.nproof }

// KeyID maps a key index to its id.
func (s *Store) KeyID(keyindex int) (uint, error) {
	if keyindex < 0 || keyindex >= s.nproof {
		return 0, ErrNoKey
	}
	return s.keytable[keyindex].KeyID, nil
}

// TxCounts returns the transaction shape a key index proves.
func (s *Store) TxCounts(keyindex int) (nout, nin, ninWithPath uint16) {
	if keyindex < 0 || keyindex >= s.nproof {
		return 0, 0, 0
	}
	e := &s.keytable[keyindex]
	return e.Nout, e.Nin, e.NinWithPath
}

func (s *Store) fits(keyindex int, nout, nin, ninWithPath uint16) bool {
	e := &s.keytable[keyindex]
	return nout <= e.Nout && nin <= e.Nin && ninWithPath <= e.NinWithPath
}

// keyFileName is deterministic from the entry's shape.
func (s *Store) keyFileName(keyindex int, verify bool) string {
	e := &s.keytable[keyindex]
	kind := "Prove"
	if verify {
		kind = "Verify"
	}
	name := fmt.Sprintf("CC-ZK-%s-Key-%d-%d-%d-%d.dat",
		kind, e.KeyID, e.Nout, e.NinWithPath, e.Nin-e.NinWithPath)
	return filepath.Join(s.keyPath, name)
}

// ProveKey loads (or returns the cached) proving key for an index. At
// most nproofsave prover keys stay resident.
func (s *Store) ProveKey(keyindex int) (*snark.ProveKey, error) {
	if keyindex < 0 || keyindex >= s.nproof {
		return nil, ErrNoKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProveKeyLocked(keyindex)
}

func (s *Store) loadProveKeyLocked(keyindex int) (*snark.ProveKey, error) {
	if key := s.provekeys[keyindex]; key != nil {
		return key, nil
	}

	name := s.keyFileName(keyindex, false)
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, name)
	}
	defer f.Close()

	key := &snark.ProveKey{}
	if err := key.ReadFrom(f); err != nil {
		s.log.Warn("malformed proof key file",
			zap.String("file", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrLoadingKey, name)
	}

	if keyindex < s.nproofsave {
		s.provekeys[keyindex] = key
	}
	return key, nil
}

// UnloadProveKey drops a cached proving key.
func (s *Store) UnloadProveKey(keyindex int) {
	if keyindex < 0 || keyindex >= s.nproof {
		return
	}
	s.mu.Lock()
	s.provekeys[keyindex] = nil
	s.mu.Unlock()
}

// VerifyKey loads (or returns the cached) verification key for a key id.
func (s *Store) VerifyKey(keyid uint) (*snark.VerifyKey, error) {
	if keyid >= uint(s.nproof) {
		return nil, ErrNoKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if key := s.verifykeys[keyid]; key != nil {
		return key, nil
	}

	name := s.keyFileName(int(keyid), true)
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, name)
	}
	defer f.Close()

	key := &snark.VerifyKey{}
	if err := key.ReadFrom(f); err != nil {
		s.log.Warn("malformed verify key file",
			zap.String("file", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrLoadingKey, name)
	}

	s.verifykeys[keyid] = key
	return key, nil
}

// KeyIndex picks the least-work loadable key that fits the requested
// shape, and rewrites the counts to the key's own shape.
func (s *Store) KeyIndex(nout, nin, ninWithPath *uint16) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, keyindex := range s.workorder {
		if !s.fits(keyindex, *nout, *nin, *ninWithPath) {
			continue
		}
		if _, err := s.loadProveKeyLocked(keyindex); err != nil {
			continue
		}

		e := &s.keytable[keyindex]
		*nout, *nin, *ninWithPath = e.Nout, e.Nin, e.NinWithPath
		return keyindex, nil
	}

	return -1, ErrNoKey
}

// CheckPinned validates a caller-pinned key index against the requested
// shape and rewrites the counts to the key's shape.
func (s *Store) CheckPinned(keyindex int, nout, nin, ninWithPath *uint16) error {
	if keyindex < 0 || keyindex >= s.nproof {
		return ErrNoKey
	}
	if !s.fits(keyindex, *nout, *nin, *ninWithPath) {
		return ErrInsufficientKey
	}
	e := &s.keytable[keyindex]
	*nout, *nin, *ninWithPath = e.Nout, e.Nin, e.NinWithPath
	return nil
}

// PreloadVerifyKeys loads every verification key. With requireAll, a
// single missing key fails the call; otherwise at least one must load.
func (s *Store) PreloadVerifyKeys(requireAll bool) error {
	loaded := 0
	for i := 0; i < s.nproof; i++ {
		if _, err := s.VerifyKey(uint(i)); err != nil {
			if requireAll {
				return err
			}
			continue
		}
		loaded++
	}
	if loaded == 0 {
		return ErrNoKey
	}
	return nil
}

// SaveKeyPair writes both halves of a generated keypair into the store's
// directory, creating it if needed. Used by key generation and tests.
func (s *Store) SaveKeyPair(keyindex int, pk *snark.ProveKey, vk *snark.VerifyKey) error {
	if keyindex < 0 || keyindex >= s.nproof {
		return ErrNoKey
	}

	if err := os.MkdirAll(s.keyPath, 0o755); err != nil {
		return err
	}

	f, err := os.Create(s.keyFileName(keyindex, false))
	if err != nil {
		return err
	}
	if err := pk.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	f, err = os.Create(s.keyFileName(keyindex, true))
	if err != nil {
		return err
	}
	if err := vk.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
