package registry

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// VerifyInclusion walks a binary Merkle authentication path from leaf to
// root. The low bit of the index picks the hashing order at each level:
// bit 0 means the current node is the left input, bit 1 the right.
//
// Note the registry root is a linear fold over (root, leaf, count)
// triples, not a binary tree, so paths verified here check membership in
// an externally published tree snapshot rather than the live contract
// root.
func VerifyInclusion(root, leaf fr.Element, index uint64, siblings []fr.Element) bool {
	current := leaf
	for _, sibling := range siblings {
		if index&1 == 0 {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
		index >>= 1
	}
	return current.Equal(&root)
}

// BuildTree folds leaves into a binary Merkle tree, padding odd levels
// with the zero element so every node has a sibling and authentication
// paths stay aligned with the index bits. Returns the root and, per leaf,
// the sibling path usable with VerifyInclusion.
func BuildTree(leaves []fr.Element) (fr.Element, [][]fr.Element) {
	if len(leaves) == 0 {
		return fr.Element{}, nil
	}

	paths := make([][]fr.Element, len(leaves))
	positions := make([]int, len(leaves))
	for i := range leaves {
		positions[i] = i
	}

	level := make([]fr.Element, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, fr.Element{})
		}

		for leaf, pos := range positions {
			paths[leaf] = append(paths[leaf], level[pos^1])
			positions[leaf] = pos / 2
		}

		next := make([]fr.Element, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		level = next
	}

	return level[0], paths
}

// RecordLeaf maps a registry record to its Merkle leaf, using the same
// (hash, timestamp, type) triple as the contract's linear fold.
func RecordLeaf(r Record) fr.Element {
	return hashTriple(r.PassportHash, uint64ToElement(uint64(r.Timestamp)), uint64ToElement(uint64(r.Type)))
}

func hashPair(left, right fr.Element) fr.Element {
	h := mimc.NewMiMC()
	lb := left.Bytes()
	h.Write(lb[:])
	rb := right.Bytes()
	h.Write(rb[:])

	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}
