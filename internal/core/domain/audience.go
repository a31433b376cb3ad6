package domain

import "sort"

// AudienceSegment is one addressable viewer group for a campaign.
// Segments are regenerated wholesale whenever preferences change, never
// patched incrementally.
type AudienceSegment struct {
	Name        string  `json:"name"`
	Demographic string  `json:"demographic"`
	Behavioral  string  `json:"behavioral"`
	Reach       int64   `json:"reach"`
	FloorCPM    float64 `json:"floor_cpm"`
}

// SortSegments applies the canonical segment ordering used for line item
// allocation: descending estimated reach, then ascending price floor,
// then name.
func SortSegments(segs []AudienceSegment) {
	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].Reach != segs[j].Reach {
			return segs[i].Reach > segs[j].Reach
		}
		if segs[i].FloorCPM != segs[j].FloorCPM {
			return segs[i].FloorCPM < segs[j].FloorCPM
		}
		return segs[i].Name < segs[j].Name
	})
}
