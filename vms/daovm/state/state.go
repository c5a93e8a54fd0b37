// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state persists DAO VM state in a key-value database.
//
// Every storage item lives under its own prefix. Integer keys are big-endian
// and commitment keys are groupID || member, so iterating a prefix visits
// groups in ascending id order and a group's commitments in ascending member
// order. Iteration order is therefore identical on every replica.
package state

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/daovm/utils/wrappers"
)

var (
	ErrCorrupted = errors.New("state corrupted")

	groupCounterKey = []byte("groupCounter")
	lastAcceptedKey = []byte("lastAccepted")

	metaPrefix        = []byte("meta")
	groupNamePrefix   = []byte("groupName")
	groupIDPrefix     = []byte("groupID")
	ownerPrefix       = []byte("owner")
	membersPrefix     = []byte("members")
	roundStartPrefix  = []byte("roundStart")
	commitmentPrefix  = []byte("commitment")
	winningHashPrefix = []byte("winningHash")
)

// GroupID identifies a group. Ids are assigned sequentially from 0.
type GroupID uint16

// Commitment is a member's submission for the current round.
type Commitment struct {
	// Entropy is mixed into the selection hash. It is not verified.
	Entropy ids.ID `serialize:"true" json:"entropy"`
	// MaskedHash is the Keccak-256 of the member's secret value.
	MaskedHash ids.ID `serialize:"true" json:"maskedHash"`
}

// MemberCommitment is a Commitment together with the member that made it.
type MemberCommitment struct {
	Member ids.ShortID `json:"member"`
	Commitment
}

// Round is a group whose round start tick has been recorded.
type Round struct {
	GroupID   GroupID
	StartTick uint64
}

type memberList struct {
	Members []ids.ShortID `serialize:"true"`
}

// State reads and writes DAO VM state. It is not safe for concurrent use; the
// VM applies one step at a time.
type State struct {
	db database.Database

	metaDB        database.Database
	groupNameDB   database.Database // groupID -> name
	groupIDDB     database.Database // name -> groupID
	ownerDB       database.Database // groupID -> owner
	membersDB     database.Database // groupID -> member list
	roundStartDB  database.Database // groupID -> tick
	commitmentDB  database.Database // groupID || member -> commitment
	winningHashDB database.Database // groupID -> masked hash
}

// New returns a State backed by db.
func New(db database.Database) *State {
	return &State{
		db:            db,
		metaDB:        prefixdb.New(metaPrefix, db),
		groupNameDB:   prefixdb.New(groupNamePrefix, db),
		groupIDDB:     prefixdb.New(groupIDPrefix, db),
		ownerDB:       prefixdb.New(ownerPrefix, db),
		membersDB:     prefixdb.New(membersPrefix, db),
		roundStartDB:  prefixdb.New(roundStartPrefix, db),
		commitmentDB:  prefixdb.New(commitmentPrefix, db),
		winningHashDB: prefixdb.New(winningHashPrefix, db),
	}
}

// GetGroupCounter returns the id the next created group would receive.
func (s *State) GetGroupCounter() (GroupID, error) {
	b, err := s.metaDB.Get(groupCounterKey)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return parseGroupID(b)
}

func (s *State) PutGroupCounter(id GroupID) error {
	return s.metaDB.Put(groupCounterKey, groupKey(id))
}

// GetLastAccepted returns the id and height of the last processed block, or
// database.ErrNotFound if no block was processed yet.
func (s *State) GetLastAccepted() (ids.ID, uint64, error) {
	b, err := s.metaDB.Get(lastAcceptedKey)
	if err != nil {
		return ids.Empty, 0, err
	}
	p := wrappers.Packer{Bytes: b}
	blkID, err := ids.ToID(p.UnpackFixedBytes(ids.IDLen))
	height := p.UnpackLong()
	if p.Errored() || err != nil || p.Offset != len(b) {
		return ids.Empty, 0, fmt.Errorf("%w: malformed last accepted block", ErrCorrupted)
	}
	return blkID, height, nil
}

func (s *State) PutLastAccepted(blkID ids.ID, height uint64) error {
	p := wrappers.Packer{MaxSize: ids.IDLen + wrappers.LongLen}
	p.PackFixedBytes(blkID[:])
	p.PackLong(height)
	return s.metaDB.Put(lastAcceptedKey, p.Bytes)
}

// GetGroupID returns database.ErrNotFound if no group has the name.
func (s *State) GetGroupID(name []byte) (GroupID, error) {
	b, err := s.groupIDDB.Get(name)
	if err != nil {
		return 0, err
	}
	return parseGroupID(b)
}

// GetGroupName returns database.ErrNotFound if the group does not exist.
func (s *State) GetGroupName(id GroupID) ([]byte, error) {
	return s.groupNameDB.Get(groupKey(id))
}

func (s *State) HasGroup(id GroupID) (bool, error) {
	return s.groupNameDB.Has(groupKey(id))
}

// GetOwner returns database.ErrNotFound if the group does not exist.
func (s *State) GetOwner(id GroupID) (ids.ShortID, error) {
	b, err := s.ownerDB.Get(groupKey(id))
	if err != nil {
		return ids.ShortEmpty, err
	}
	if len(b) != len(ids.ShortID{}) {
		return ids.ShortEmpty, fmt.Errorf("%w: owner of group %d has %d bytes", ErrCorrupted, id, len(b))
	}
	var owner ids.ShortID
	copy(owner[:], b)
	return owner, nil
}

// PutGroup records the name <-> id mapping and the owner of a new group.
func (s *State) PutGroup(id GroupID, name []byte, owner ids.ShortID) error {
	key := groupKey(id)
	errs := wrappers.Errs{}
	errs.Add(
		s.groupNameDB.Put(key, name),
		s.groupIDDB.Put(name, key),
		s.ownerDB.Put(key, owner[:]),
	)
	return errs.Err
}

// GetMembers returns the members of a group in insertion order. A group
// without members, or one that does not exist, has an empty member list.
func (s *State) GetMembers(id GroupID) ([]ids.ShortID, error) {
	b, err := s.membersDB.Get(groupKey(id))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list memberList
	if _, err := Codec.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("%w: members of group %d: %w", ErrCorrupted, id, err)
	}
	return list.Members, nil
}

func (s *State) PutMembers(id GroupID, members []ids.ShortID) error {
	b, err := Codec.Marshal(CodecVersion, &memberList{Members: members})
	if err != nil {
		return err
	}
	return s.membersDB.Put(groupKey(id), b)
}

// IsMember reports whether addr currently belongs to the group.
func (s *State) IsMember(id GroupID, addr ids.ShortID) (bool, error) {
	members, err := s.GetMembers(id)
	if err != nil {
		return false, err
	}
	return slices.Contains(members, addr), nil
}

// GetRoundStart returns database.ErrNotFound if no round is open.
func (s *State) GetRoundStart(id GroupID) (uint64, error) {
	b, err := s.roundStartDB.Get(groupKey(id))
	if err != nil {
		return 0, err
	}
	p := wrappers.Packer{Bytes: b}
	tick := p.UnpackLong()
	if p.Errored() {
		return 0, fmt.Errorf("%w: round start of group %d: %w", ErrCorrupted, id, p.Err)
	}
	return tick, nil
}

func (s *State) PutRoundStart(id GroupID, tick uint64) error {
	p := wrappers.Packer{MaxSize: wrappers.LongLen}
	p.PackLong(tick)
	return s.roundStartDB.Put(groupKey(id), p.Bytes)
}

func (s *State) DeleteRoundStart(id GroupID) error {
	return s.roundStartDB.Delete(groupKey(id))
}

// GetRounds returns every group with a recorded round start, in ascending
// group id order.
func (s *State) GetRounds() ([]Round, error) {
	it := s.roundStartDB.NewIterator()
	defer it.Release()

	var rounds []Round
	for it.Next() {
		id, err := parseGroupID(it.Key())
		if err != nil {
			return nil, err
		}
		p := wrappers.Packer{Bytes: it.Value()}
		tick := p.UnpackLong()
		if p.Errored() {
			return nil, fmt.Errorf("%w: round start of group %d: %w", ErrCorrupted, id, p.Err)
		}
		rounds = append(rounds, Round{
			GroupID:   id,
			StartTick: tick,
		})
	}
	return rounds, it.Error()
}

// GetCommitment returns database.ErrNotFound if the member has not committed.
func (s *State) GetCommitment(id GroupID, member ids.ShortID) (Commitment, error) {
	b, err := s.commitmentDB.Get(commitmentKey(id, member))
	if err != nil {
		return Commitment{}, err
	}
	var c Commitment
	if _, err := Codec.Unmarshal(b, &c); err != nil {
		return Commitment{}, fmt.Errorf("%w: commitment: %w", ErrCorrupted, err)
	}
	return c, nil
}

// PutCommitment overwrites any previous commitment of the member.
func (s *State) PutCommitment(id GroupID, member ids.ShortID, c Commitment) error {
	b, err := Codec.Marshal(CodecVersion, &c)
	if err != nil {
		return err
	}
	return s.commitmentDB.Put(commitmentKey(id, member), b)
}

// GetCommitments returns the group's commitments in ascending member order.
func (s *State) GetCommitments(id GroupID) ([]MemberCommitment, error) {
	prefix := groupKey(id)
	it := s.commitmentDB.NewIteratorWithPrefix(prefix)
	defer it.Release()

	var commitments []MemberCommitment
	for it.Next() {
		key := it.Key()
		if len(key) != len(prefix)+len(ids.ShortID{}) {
			return nil, fmt.Errorf("%w: commitment key has %d bytes", ErrCorrupted, len(key))
		}

		mc := MemberCommitment{}
		copy(mc.Member[:], key[len(prefix):])
		if _, err := Codec.Unmarshal(it.Value(), &mc.Commitment); err != nil {
			return nil, fmt.Errorf("%w: commitment: %w", ErrCorrupted, err)
		}
		commitments = append(commitments, mc)
	}
	return commitments, it.Error()
}

// DeleteCommitments removes every commitment of the group.
func (s *State) DeleteCommitments(id GroupID) error {
	it := s.commitmentDB.NewIteratorWithPrefix(groupKey(id))
	var keys [][]byte
	for it.Next() {
		keys = append(keys, append([]byte(nil), it.Key()...))
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := s.commitmentDB.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// GetWinningHash returns database.ErrNotFound if no winner was selected.
func (s *State) GetWinningHash(id GroupID) (ids.ID, error) {
	b, err := s.winningHashDB.Get(groupKey(id))
	if err != nil {
		return ids.Empty, err
	}
	return ids.ToID(b)
}

func (s *State) PutWinningHash(id GroupID, hash ids.ID) error {
	return s.winningHashDB.Put(groupKey(id), hash[:])
}

func (s *State) DeleteWinningHash(id GroupID) error {
	return s.winningHashDB.Delete(groupKey(id))
}

// Checksum hashes every key and value in the underlying database, in key
// order, each prefixed with its 4-byte big-endian length. Replicas that
// applied the same blocks report the same checksum.
func (s *State) Checksum() (ids.ID, error) {
	it := s.db.NewIterator()
	defer it.Release()

	h := sha256.New()
	var size [wrappers.IntLen]byte
	write := func(b []byte) {
		binary.BigEndian.PutUint32(size[:], uint32(len(b)))
		_, _ = h.Write(size[:])
		_, _ = h.Write(b)
	}
	for it.Next() {
		write(it.Key())
		write(it.Value())
	}
	if err := it.Error(); err != nil {
		return ids.Empty, err
	}
	return ids.ToID(h.Sum(nil))
}

func groupKey(id GroupID) []byte {
	p := wrappers.Packer{MaxSize: wrappers.ShortLen}
	p.PackShort(uint16(id))
	return p.Bytes
}

func commitmentKey(id GroupID, member ids.ShortID) []byte {
	key := groupKey(id)
	return append(key, member[:]...)
}

func parseGroupID(b []byte) (GroupID, error) {
	p := wrappers.Packer{Bytes: b}
	id := p.UnpackShort()
	if p.Errored() || p.Offset != len(b) {
		return 0, fmt.Errorf("%w: malformed group id %x", ErrCorrupted, b)
	}
	return GroupID(id), nil
}
