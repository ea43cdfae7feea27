// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMempoolFIFO(t *testing.T) {
	assert := assert.New(t)
	m := newMempool(4)

	for i := byte(1); i <= 3; i++ {
		assert.NoError(m.Add([DatumLen]byte{i}))
	}
	assert.Equal(3, m.Len())

	for i := byte(1); i <= 3; i++ {
		datum, ok := m.Next()
		assert.True(ok)
		assert.Equal([DatumLen]byte{i}, datum)
	}

	_, ok := m.Next()
	assert.False(ok)
	assert.Zero(m.Len())
}

func TestMempoolBound(t *testing.T) {
	assert := assert.New(t)
	m := newMempool(2)

	assert.NoError(m.Add([DatumLen]byte{1}))
	assert.NoError(m.Add([DatumLen]byte{2}))
	assert.ErrorIs(m.Add([DatumLen]byte{3}), errMempoolFull)
	assert.Equal(2, m.Len())

	// Draining frees capacity again
	_, ok := m.Next()
	assert.True(ok)
	assert.NoError(m.Add([DatumLen]byte{4}))
}

// Duplicates are legal: the mempool does not deduplicate
func TestMempoolAllowsDuplicates(t *testing.T) {
	assert := assert.New(t)
	m := newMempool(4)

	assert.NoError(m.Add([DatumLen]byte{1}))
	assert.NoError(m.Add([DatumLen]byte{1}))
	assert.Equal(2, m.Len())
}
