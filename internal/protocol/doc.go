// Package protocol owns the wire contract shared by every program.
//
// Ownership boundary:
// - instruction tag numbering and fixed-layout payload codecs
// - the error taxonomy with stable numeric codes
// - secp256k1 signature recovery used by ownership rotation
//
// Subpackages own the derived-address helper (pda) and the admin
// record account layout (record). Every program encodes and decodes
// through this package so bytes agree across program boundaries.
package protocol
