// SPDX-License-Identifier: EPL-2.0

package mkv

import (
	"sort"

	"github.com/ik5/webmdec/container/ebml"
)

// CuePoint is one Cues entry flattened per track.
type CuePoint struct {
	// Time is in TimecodeScale units.
	Time  uint64
	Track uint64
	// Cluster is the absolute file offset of the cluster.
	Cluster int64
}

func parseCues(b []byte, segmentStart int64) ([]CuePoint, error) {
	var cues []CuePoint
	err := ebml.Walk(b, func(id uint32, payload []byte) error {
		if id != IDCuePoint {
			return nil
		}
		return parseCuePoint(payload, segmentStart, &cues)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Time < cues[j].Time })
	return cues, nil
}

func parseCuePoint(b []byte, segmentStart int64, cues *[]CuePoint) error {
	var (
		t         uint64
		positions [][]byte
	)
	err := ebml.Walk(b, func(id uint32, payload []byte) error {
		var err error
		switch id {
		case IDCueTime:
			t, err = ebml.Uint(payload)
		case IDCueTrackPositions:
			positions = append(positions, payload)
		}
		return err
	})
	if err != nil {
		return err
	}

	for _, pos := range positions {
		cp := CuePoint{Time: t, Cluster: -1}
		err := ebml.Walk(pos, func(id uint32, payload []byte) error {
			switch id {
			case IDCueTrack:
				v, err := ebml.Uint(payload)
				cp.Track = v
				return err
			case IDCueClusterPosition:
				v, err := ebml.Uint(payload)
				cp.Cluster = segmentStart + int64(v)
				return err
			}
			return nil
		})
		if err != nil {
			return err
		}
		if cp.Cluster >= 0 {
			*cues = append(*cues, cp)
		}
	}
	return nil
}

// findCue returns the last cue at or before t for track, or for any track
// when none of the cues mentions it. ok is false when every cue is later
// than t.
func findCue(cues []CuePoint, t uint64, track uint64) (CuePoint, bool) {
	hasTrack := false
	for _, c := range cues {
		if c.Track == track {
			hasTrack = true
			break
		}
	}

	var (
		best  CuePoint
		found bool
	)
	for _, c := range cues {
		if c.Time > t {
			break
		}
		if hasTrack && c.Track != track {
			continue
		}
		best, found = c, true
	}
	return best, found
}
