package tubefetch

// Catalog is the selectable formats of one lookup, split by kind.
type Catalog struct {
	Video []FormatOption
	Audio []FormatOption
}

// Organize partitions formats by kind, keeping input order within each partition. Formats of unknown kinds are
// dropped.
func Organize(formats []FormatOption) Catalog {
	var c Catalog
	for _, f := range formats {
		switch f.Kind {
		case FormatVideo:
			c.Video = append(c.Video, f)
		case FormatAudio:
			c.Audio = append(c.Audio, f)
		}
	}
	return c
}

// Len is the number of selectable formats.
func (c Catalog) Len() int {
	return len(c.Video) + len(c.Audio)
}

// All returns video formats followed by audio formats, the order they are presented in.
func (c Catalog) All() []FormatOption {
	all := make([]FormatOption, 0, c.Len())
	all = append(all, c.Video...)
	return append(all, c.Audio...)
}

// Find looks up a format by its backend-assigned ID.
func (c Catalog) Find(id string) (FormatOption, bool) {
	for _, f := range c.All() {
		if f.ID == id {
			return f, true
		}
	}
	return FormatOption{}, false
}
