package registry

// ApplyOverrides returns a copy of descriptors with the Enabled flag replaced
// for every ID present in overrides. IDs absent from overrides keep their
// local value; override IDs that match no descriptor are ignored.
func ApplyOverrides(descriptors []Descriptor, overrides map[string]bool) []Descriptor {
	if len(overrides) == 0 {
		out := make([]Descriptor, len(descriptors))
		copy(out, descriptors)
		return out
	}
	out := make([]Descriptor, len(descriptors))
	for i, d := range descriptors {
		if enabled, ok := overrides[d.ID]; ok {
			d.Enabled = enabled
		}
		out[i] = d
	}
	return out
}
