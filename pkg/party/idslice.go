package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice is a sorted slice of party IDs.
type IDSlice []ID

// NewIDSlice returns a sorted copy of partyIDs.
func NewIDSlice(partyIDs []ID) IDSlice {
	ids := IDSlice(append([]ID(nil), partyIDs...))
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Contains returns true if partyIDs contains all of ids.
func (partyIDs IDSlice) Contains(ids ...ID) bool {
	for _, id := range ids {
		if _, ok := partyIDs.search(id); !ok {
			return false
		}
	}
	return true
}

func (partyIDs IDSlice) search(x ID) (int, bool) {
	index := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= x })
	if index < len(partyIDs) && partyIDs[index] == x {
		return index, true
	}
	return 0, false
}

// Valid returns true if the slice is sorted, contains no duplicates and no empty ID.
func (partyIDs IDSlice) Valid() bool {
	for i, id := range partyIDs {
		if id == "" {
			return false
		}
		if i > 0 && partyIDs[i-1] >= id {
			return false
		}
	}
	return true
}

// Remove returns a new sorted slice without id.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(partyIDs))
	for _, other := range partyIDs {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, uint32(len(partyIDs))); err != nil {
		return 0, err
	}
	total := int64(4)
	for _, id := range partyIDs {
		if err := binary.Write(w, binary.BigEndian, uint32(len(id))); err != nil {
			return total, err
		}
		n, err := w.Write([]byte(id))
		total += 4 + int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (IDSlice) Domain() string {
	return "IDSlice"
}
