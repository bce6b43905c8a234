package bpblock

// MaxEncodedChunkSize is the maximum payload of a single cbor_data block
// (spec §6, BP_MPOOL_MAX_ENCODED_CHUNK_SIZE). Oversize payloads are chained
// across multiple cbor_data blocks.
const MaxEncodedChunkSize = 320
