// Package codec implements the framing shared by every persisted artifact.
//
// An artifact is laid out as
//
//	[format_version u32][curve_tag u32][kind u32][section_count u32]
//	section_count × [section_tag u32][length u64][bytes]
//	[blake3-256 digest of everything above]
//
// All integers are big-endian. Decode validates the whole frame, including
// the digest, before any section is handed to a content decoder, and never
// reads past the supplied buffer.
package codec
