// Package wire defines the LEDNET wire format: checksummed fixed-length
// command frames and the state-query reply.
//
// Every frame is a payload followed by a single checksum byte, the sum of
// the payload bytes modulo 256:
//
//	[opcode][...payload...][checksum]
//
// # Frame Shapes
//
//   - Power set: [0x71, on/off word, 0x0f, sum]
//   - Color set: [0x31, R, G, B, warm, cold, write mask, 0x0f, sum]
//   - State query: [0x81, 0x8a, 0x8b, sum]
//
// The device acknowledges a power set by echoing [0x0f, 0x71, word, sum].
// Color sets are not acknowledged. A state query is answered with a 14-byte
// checksummed reply; ParseState decodes its fields.
//
// The checksum only guards against transmission corruption. A frame that
// passes validation can still carry semantically meaningless values.
package wire
