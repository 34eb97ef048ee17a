// Package filter implements the compression schemes an ICS data stream may
// use.
//
// # Supported Schemes
//
//   - Uncompressed: samples are stored as they are.
//
//   - GZip: the data is a single gzip member. Writing produces a minimal
//     10-byte header (no name, no timestamp, OS set to Unix) followed by raw
//     deflate data and the CRC-32/length trailer.
//     Reading accepts any header flags and verifies the trailer. Both
//     directions use github.com/klauspost/compress.
//
//   - Compress: the Unix compress(1) LZW format (".Z"). It can only be read,
//     and only as a whole; requests to write it are promoted to GZip.
//
// # Key Types
//
//   - [Compression]: the scheme named by a header's "compression" keyword
//   - [Codec]: constructs stream readers and writers for one scheme
//   - [Registry]: codecs by scheme, consulted by [NewReader] and [NewWriter]
package filter
