// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

// BytesToDatum zero-pads [input] into a fixed-width datum. Input longer than
// [DatumLen] is truncated.
func BytesToDatum(input []byte) [DatumLen]byte {
	datum := [DatumLen]byte{}
	lim := len(input)
	if lim > DatumLen {
		lim = DatumLen
	}
	copy(datum[:], input[:lim])
	return datum
}
