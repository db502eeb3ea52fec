package merkle_test

import (
	"fmt"
	"testing"

	"github.com/arkade-os/nftbridge/pkg/merkle"
	"github.com/stretchr/testify/require"
)

func makeLeaves(n int) []merkle.Hash {
	leaves := make([]merkle.Hash, 0, n)
	for i := 0; i < n; i++ {
		leaves = append(leaves, merkle.LeafHash([]byte(fmt.Sprintf("intent-%d", i))))
	}
	return leaves
}

func TestTree(t *testing.T) {
	t.Run("layout", func(t *testing.T) {
		leaves := makeLeaves(4)
		tree, err := merkle.NewTree(leaves)
		require.NoError(t, err)

		nodes := tree.Nodes()
		require.Len(t, nodes, 7)
		require.Equal(t, merkle.HashPair(leaves[0], leaves[1]), nodes[4])
		require.Equal(t, merkle.HashPair(leaves[2], leaves[3]), nodes[5])
		require.Equal(t, merkle.HashPair(nodes[4], nodes[5]), tree.Root())

		proof, err := tree.Proof(1)
		require.NoError(t, err)
		require.Equal(t, []merkle.Hash{nodes[0], nodes[5]}, proof)
	})

	t.Run("single leaf", func(t *testing.T) {
		leaves := makeLeaves(1)
		tree, err := merkle.NewTree(leaves)
		require.NoError(t, err)
		require.Equal(t, leaves[0], tree.Root())
		require.Zero(t, tree.Depth())

		proof, err := tree.Proof(0)
		require.NoError(t, err)
		require.Empty(t, proof)
		require.True(t, merkle.Verify(tree.Root(), leaves[0], 0, proof))
	})

	t.Run("padding", func(t *testing.T) {
		leaves := makeLeaves(3)
		tree, err := merkle.NewTree(leaves)
		require.NoError(t, err)
		require.Equal(t, 2, tree.Depth())
		require.Equal(t, merkle.ZeroHash, tree.Nodes()[3])

		_, err = tree.Proof(3)
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := merkle.NewTree(nil)
		require.Error(t, err)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := merkle.NewTree(makeLeaves(5))
		require.NoError(t, err)
		b, err := merkle.NewTree(makeLeaves(5))
		require.NoError(t, err)
		require.Equal(t, a.Root(), b.Root())
	})
}

func TestVerify(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 7, 8, 16} {
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			leaves := makeLeaves(n)
			tree, err := merkle.NewTree(leaves)
			require.NoError(t, err)
			root := tree.Root()

			for i, leaf := range leaves {
				proof, err := tree.Proof(i)
				require.NoError(t, err)
				require.True(t, merkle.Verify(root, leaf, uint32(i), proof))

				flipped := leaf
				flipped[0] ^= 0x01
				require.False(t, merkle.Verify(root, flipped, uint32(i), proof))

				for j := range proof {
					bad := make([]merkle.Hash, len(proof))
					copy(bad, proof)
					bad[j][HashTail] ^= 0x80
					require.False(t, merkle.Verify(root, leaf, uint32(i), bad))
				}

				if len(proof) > 0 {
					aliased := uint32(i) + uint32(1)<<len(proof)
					require.False(t, merkle.Verify(root, leaf, aliased, proof))
				}
			}
		})
	}
}

const HashTail = merkle.HashSize - 1

func TestInnerNodeIsNotALeaf(t *testing.T) {
	leaves := makeLeaves(4)
	tree, err := merkle.NewTree(leaves)
	require.NoError(t, err)
	nodes := tree.Nodes()

	// Presenting the children of nodes[4] as leaf data must not reproduce the root.
	data := append(append([]byte{}, leaves[0][:]...), leaves[1][:]...)
	forged := merkle.LeafHash(data)
	require.NotEqual(t, nodes[4], forged)
	require.False(t, merkle.Verify(tree.Root(), forged, 0, []merkle.Hash{nodes[5]}))
}

func TestHashText(t *testing.T) {
	h := merkle.Keccak256([]byte("nftbridge"))
	text, err := h.MarshalText()
	require.NoError(t, err)

	var parsed merkle.Hash
	require.NoError(t, parsed.UnmarshalText(text))
	require.Equal(t, h, parsed)

	_, err = merkle.HashFromString("abcd")
	require.Error(t, err)
	_, err = merkle.HashFromString("zz")
	require.Error(t, err)
}

func TestVerifier(t *testing.T) {
	leaves := makeLeaves(4)
	tree, err := merkle.NewTree(leaves)
	require.NoError(t, err)
	proof, err := tree.Proof(2)
	require.NoError(t, err)

	v, err := merkle.NewVerifier(0)
	require.NoError(t, err)

	require.True(t, v.Verify(tree.Root(), leaves[2], 2, proof))
	require.True(t, v.Verify(tree.Root(), leaves[2], 2, proof))
	require.False(t, v.Verify(tree.Root(), leaves[1], 2, proof))
	require.Equal(t, 2, v.Len())
}
