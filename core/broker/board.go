package broker

import (
	"sort"

	"taximarket/core/model"
)

// FareBoard owns the set of known fares, keyed flat on the
// origin/destination/call-time triplet; processing order is reconstructed by
// sorting keys.
type FareBoard struct {
	fares map[model.FareKey]*model.Fare
}

// NewFareBoard returns an empty board.
func NewFareBoard() *FareBoard {
	return &FareBoard{fares: make(map[model.FareKey]*model.Fare)}
}

// Register creates the fare for the triplet: unpriced, unallocated, no
// bidders. An existing entry under the same triplet is silently replaced —
// the model assumes at most one active fare per origin node at a time, so a
// repeated triplet denotes the same fare.
func (b *FareBoard) Register(origin, destination model.Coord, callTime int64) *model.Fare {
	f := &model.Fare{Origin: origin, Destination: destination, CallTime: callTime}
	b.fares[f.Key()] = f
	return f
}

// Lookup returns the fare for the key, if present.
func (b *FareBoard) Lookup(key model.FareKey) (*model.Fare, bool) {
	f, ok := b.fares[key]
	return f, ok
}

// Remove deletes and returns the fare for the key. Removing an unknown key
// is a no-op.
func (b *FareBoard) Remove(key model.FareKey) (*model.Fare, bool) {
	f, ok := b.fares[key]
	if ok {
		delete(b.fares, key)
	}
	return f, ok
}

// Len returns the number of tracked fares.
func (b *FareBoard) Len() int { return len(b.fares) }

// RecordBid appends the bidder to the first still-unallocated fare under the
// origin and reports whether a fare accepted the bid. Only one fare per
// origin is open for bidding at a time: the scan stops at the first match,
// so concurrent unallocated fares sharing an origin starve all but one.
func (b *FareBoard) RecordBid(origin model.Coord, taxiID string) bool {
	for _, key := range b.Keys() {
		if key.Origin != origin {
			continue
		}
		f := b.fares[key]
		if f.Allocated() {
			continue
		}
		f.Bidders = append(f.Bidders, taxiID)
		return true
	}
	return false
}

// FirstUnallocated returns the oldest unallocated fare between the origin
// and destination, if any.
func (b *FareBoard) FirstUnallocated(origin, destination model.Coord) (*model.Fare, bool) {
	for _, key := range b.Keys() {
		if key.Origin != origin || key.Destination != destination {
			continue
		}
		if f := b.fares[key]; !f.Allocated() {
			return f, true
		}
	}
	return nil, false
}

// Keys returns all fare keys grouped by origin, then destination, then call
// time ascending. Oldest fares under a pair come first.
func (b *FareBoard) Keys() []model.FareKey {
	keys := make([]model.FareKey, 0, len(b.fares))
	for k := range b.fares {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return fareKeyLess(keys[i], keys[j]) })
	return keys
}

func fareKeyLess(a, b model.FareKey) bool {
	if a.Origin != b.Origin {
		return a.Origin.Less(b.Origin)
	}
	if a.Destination != b.Destination {
		return a.Destination.Less(b.Destination)
	}
	return a.CallTime < b.CallTime
}
