package firmware

import "github.com/fwtools/hexforge/pkg/ihex"

// SegmentStat describes one contiguous run of data. Start and End are
// both inclusive.
type SegmentStat struct {
	Start  uint32 `json:"start"`
	End    uint32 `json:"end"`
	Length int    `json:"length"`
}

// Stats is the summary the info command and the API report for an
// image.
type Stats struct {
	Format       string        `json:"format"`
	TotalBytes   int           `json:"total_bytes"`
	SegmentCount int           `json:"segment_count"`
	HasData      bool          `json:"has_data"`
	MinAddress   uint32        `json:"min_address"`
	MaxAddress   uint32        `json:"max_address"`
	StartKind    string        `json:"start_kind,omitempty"`
	StartValue   uint32        `json:"start_value,omitempty"`
	Segments     []SegmentStat `json:"segments"`
}

// Stats summarizes the image. MinAddress and MaxAddress are zero when
// the image holds no data; check HasData first.
func (im *Image) Stats() Stats {
	st := Stats{
		Format:     im.Format.String(),
		TotalBytes: im.Space.Len(),
		Segments:   []SegmentStat{},
	}

	min, max, ok := im.Space.AddressRange()
	st.HasData = ok
	if ok {
		st.MinAddress = min
		st.MaxAddress = max
	}

	segs := im.Space.Segments()
	st.SegmentCount = len(segs)
	for _, seg := range segs {
		st.Segments = append(st.Segments, SegmentStat{
			Start:  seg.Start,
			End:    seg.End(),
			Length: len(seg.Data),
		})
	}

	if im.Start != nil {
		switch im.Start.Kind {
		case ihex.TypeStartSegmentAddress:
			st.StartKind = "segment"
		case ihex.TypeStartLinearAddress:
			st.StartKind = "linear"
		}
		st.StartValue = im.Start.Value
	}
	return st
}
