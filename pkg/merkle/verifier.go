package merkle

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultVerifierCacheSize = 4096

type verifyKey struct {
	root  Hash
	leaf  Hash
	index uint32
	proof Hash
}

// Verifier memoizes the outcome of proof checks.
type Verifier struct {
	cache *lru.Cache[verifyKey, bool]
}

func NewVerifier(size int) (*Verifier, error) {
	if size <= 0 {
		size = defaultVerifierCacheSize
	}
	cache, err := lru.New[verifyKey, bool](size)
	if err != nil {
		return nil, err
	}
	return &Verifier{cache}, nil
}

func (v *Verifier) Verify(root, leaf Hash, index uint32, siblings []Hash) bool {
	key := verifyKey{root, leaf, index, proofDigest(siblings)}
	if ok, found := v.cache.Get(key); found {
		return ok
	}

	ok := Verify(root, leaf, index, siblings)
	v.cache.Add(key, ok)
	return ok
}

func (v *Verifier) Len() int {
	return v.cache.Len()
}

func proofDigest(siblings []Hash) Hash {
	buf := make([]byte, 4, 4+len(siblings)*HashSize)
	binary.BigEndian.PutUint32(buf, uint32(len(siblings)))
	for _, s := range siblings {
		buf = append(buf, s[:]...)
	}
	return Keccak256(buf)
}
