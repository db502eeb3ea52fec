// Package merkle implements the binary Keccak256 Merkle tree used to commit bridge blocks.
//
// Leaves are padded to the next power of two with ZeroHash. Leaf and node hashes are domain
// separated (0x00 and 0x01 prefixes) so an inner node can never be presented as a leaf.
package merkle

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const HashSize = 32

const (
	leafPrefix byte = 0x00
	nodePrefix byte = 0x01
)

type Hash [HashSize]byte

// ZeroHash is the sentinel used to pad a level to a power of two.
var ZeroHash Hash

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromString(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func HashFromString(s string) (Hash, error) {
	var h Hash
	buf, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash: %w", err)
	}
	if len(buf) != HashSize {
		return h, fmt.Errorf("invalid hash length: got %d, expected %d", len(buf), HashSize)
	}
	copy(h[:], buf)
	return h, nil
}

func HashFromBytes(buf []byte) (Hash, error) {
	var h Hash
	if len(buf) != HashSize {
		return h, fmt.Errorf("invalid hash length: got %d, expected %d", len(buf), HashSize)
	}
	copy(h[:], buf)
	return h, nil
}

// Keccak256 returns the legacy Keccak256 digest of the concatenation of data.
func Keccak256(data ...[]byte) Hash {
	var h Hash
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

func LeafHash(data []byte) Hash {
	return Keccak256([]byte{leafPrefix}, data)
}

func HashPair(left, right Hash) Hash {
	return Keccak256([]byte{nodePrefix}, left[:], right[:])
}

// Tree keeps every level of the tree flattened bottom-up: the padded leaves first, the root
// last.
type Tree struct {
	nodes []Hash
	width int
	count int
}

func NewTree(leaves []Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("cannot build a tree without leaves")
	}

	width := nextPowerOfTwo(len(leaves))
	nodes := make([]Hash, 0, 2*width-1)
	nodes = append(nodes, leaves...)
	for i := len(leaves); i < width; i++ {
		nodes = append(nodes, ZeroHash)
	}

	levelStart, levelWidth := 0, width
	for levelWidth > 1 {
		for i := 0; i < levelWidth; i += 2 {
			nodes = append(nodes, HashPair(nodes[levelStart+i], nodes[levelStart+i+1]))
		}
		levelStart += levelWidth
		levelWidth /= 2
	}

	return &Tree{nodes: nodes, width: width, count: len(leaves)}, nil
}

func (t *Tree) Root() Hash {
	return t.nodes[len(t.nodes)-1]
}

// Nodes returns a copy of the flattened tree.
func (t *Tree) Nodes() []Hash {
	nodes := make([]Hash, len(t.nodes))
	copy(nodes, t.nodes)
	return nodes
}

// Depth is the number of siblings of every proof of this tree.
func (t *Tree) Depth() int {
	depth := 0
	for w := t.width; w > 1; w /= 2 {
		depth++
	}
	return depth
}

func (t *Tree) Proof(index int) ([]Hash, error) {
	if index < 0 || index >= t.count {
		return nil, fmt.Errorf("leaf index %d out of range [0, %d)", index, t.count)
	}

	proof := make([]Hash, 0, t.Depth())
	levelStart, levelWidth := 0, t.width
	for levelWidth > 1 {
		proof = append(proof, t.nodes[levelStart+(index^1)])
		index /= 2
		levelStart += levelWidth
		levelWidth /= 2
	}
	return proof, nil
}

// ComputeRoot folds the siblings bottom-up starting from leaf at the given index.
func ComputeRoot(leaf Hash, index uint32, siblings []Hash) Hash {
	node := leaf
	for _, sibling := range siblings {
		if index%2 == 0 {
			node = HashPair(node, sibling)
		} else {
			node = HashPair(sibling, node)
		}
		index /= 2
	}
	return node
}

// Verify checks the inclusion proof against root. The index must address a leaf of a tree of
// exactly len(siblings) levels, otherwise the same leaf could be claimed at several indexes.
func Verify(root, leaf Hash, index uint32, siblings []Hash) bool {
	if len(siblings) < 32 && uint64(index) >= uint64(1)<<len(siblings) {
		return false
	}
	return ComputeRoot(leaf, index, siblings) == root
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
