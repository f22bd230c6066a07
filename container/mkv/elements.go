// SPDX-License-Identifier: EPL-2.0

package mkv

// Matroska element IDs used by the parser.
const (
	IDSegment = 0x18538067

	IDSeekHead     = 0x114d9b74
	IDSeek         = 0x4dbb
	IDSeekID       = 0x53ab
	IDSeekPosition = 0x53ac

	IDInfo          = 0x1549a966
	IDTimecodeScale = 0x2ad7b1
	IDDuration      = 0x4489
	IDMuxingApp     = 0x4d80
	IDWritingApp    = 0x5741

	IDCluster     = 0x1f43b675
	IDTimecode    = 0xe7
	IDPosition    = 0xa7
	IDPrevSize    = 0xab
	IDSimpleBlock = 0xa3
	IDBlockGroup  = 0xa0
	IDBlock       = 0xa1

	IDBlockDuration  = 0x9b
	IDReferenceBlock = 0xfb
	IDDiscardPadding = 0x75a2

	IDTracks          = 0x1654ae6b
	IDTrackEntry      = 0xae
	IDTrackNumber     = 0xd7
	IDTrackUID        = 0x73c5
	IDTrackType       = 0x83
	IDFlagEnabled     = 0xb9
	IDFlagDefault     = 0x88
	IDFlagLacing      = 0x9c
	IDDefaultDuration = 0x23e383
	IDName            = 0x536e
	IDLanguage        = 0x22b59c
	IDCodecID         = 0x86
	IDCodecPrivate    = 0x63a2
	IDCodecDelay      = 0x56aa
	IDSeekPreRoll     = 0x56bb
	IDContentEncoding = 0x6d80

	IDVideo           = 0xe0
	IDFlagInterlaced  = 0x9a
	IDStereoMode      = 0x53b8
	IDAlphaMode       = 0x53c0
	IDPixelWidth      = 0xb0
	IDPixelHeight     = 0xba
	IDDisplayWidth    = 0x54b0
	IDDisplayHeight   = 0x54ba
	IDPixelCropBottom = 0x54aa
	IDPixelCropTop    = 0x54bb
	IDPixelCropLeft   = 0x54cc
	IDPixelCropRight  = 0x54dd

	IDAudio                   = 0xe1
	IDSamplingFrequency       = 0xb5
	IDOutputSamplingFrequency = 0x78b5
	IDChannels                = 0x9f
	IDBitDepth                = 0x6264

	IDCues                = 0x1c53bb6b
	IDCuePoint            = 0xbb
	IDCueTime             = 0xb3
	IDCueTrackPositions   = 0xb7
	IDCueTrack            = 0xf7
	IDCueClusterPosition  = 0xf1
	IDCueRelativePosition = 0xf0

	IDChapters    = 0x1043a770
	IDTags        = 0x1254c367
	IDAttachments = 0x1941a469
)

var elementNames = map[uint32]string{
	IDSegment:     "Segment",
	IDSeekHead:    "SeekHead",
	IDInfo:        "Info",
	IDCluster:     "Cluster",
	IDSimpleBlock: "SimpleBlock",
	IDBlockGroup:  "BlockGroup",
	IDTracks:      "Tracks",
	IDCues:        "Cues",
	IDChapters:    "Chapters",
	IDTags:        "Tags",
	IDAttachments: "Attachments",
}

// ElementName returns a readable name for the level 1 and block elements,
// or the hex ID for anything else.
func ElementName(id uint32) string {
	if n, ok := elementNames[id]; ok {
		return n
	}
	return hexID(id)
}

func hexID(id uint32) string {
	const digits = "0123456789abcdef"
	buf := []byte("0x00000000")
	for i := 9; i >= 2; i-- {
		buf[i] = digits[id&0xf]
		id >>= 4
	}
	return string(buf)
}
