// Package bpcrc is a CRC utility: a pure function over a byte slice,
// grounded on original_source/src/bplib_crc.h's table-driven CRC parameters.
// No other package in this module calls it yet; neither bpstore's record
// format nor bpwire's chunks carry a checksum.
package bpcrc

import "hash/crc32"

// table is the Castagnoli polynomial table.
var table = crc32.MakeTable(crc32.Castagnoli)

// Checksum32C computes the CRC-32C (Castagnoli) checksum of data.
func Checksum32C(data []byte) uint32 {
	return crc32.Checksum(data, table)
}
