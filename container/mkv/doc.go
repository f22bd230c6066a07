// SPDX-License-Identifier: EPL-2.0

// Package mkv is a pull parser for WebM and Matroska files.
//
// Open reads the EBML header and the segment metadata up to the first
// cluster: SeekHead, Info and Tracks. Packets are then pulled one block at
// a time with ReadPacket, which walks clusters of known or unknown size and
// splits laced blocks into their frames.
//
// Seek repositions the parser on the cluster that starts at or before the
// requested time. The Cues index is used when the file has one, otherwise
// clusters are scanned from the first one.
//
// Only the subset of Matroska used by WebM is interpreted. Chapters, tags,
// attachments and content encodings are skipped.
package mkv
