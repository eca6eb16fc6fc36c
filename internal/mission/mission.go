package mission

// Mission is an ordered sequence of Items sharing a Type tag, destined
// for one autopilot target system/component.
type Mission struct {
	Type            Type
	TargetSystem    uint8
	TargetComponent uint8
	Items           []Item
}

// New creates an empty Mission for the given type and autopilot target.
func New(t Type, targetSystem, targetComponent uint8) *Mission {
	return &Mission{Type: t, TargetSystem: targetSystem, TargetComponent: targetComponent}
}

// Normalize enforces spec.md's pre-upload invariant: sequence indices
// are dense and zero-based, and exactly the first item has Current=1.
func (m *Mission) Normalize() {
	for i := range m.Items {
		m.Items[i].Seq = uint16(i)
		if i == 0 {
			m.Items[i].Current = 1
		} else {
			m.Items[i].Current = 0
		}
	}
}

// Append adds items to the end of the mission and re-indexes sequence
// numbers contiguously. spec.md §4.2: "appending items increments
// sequence indices contiguously" — the caller must still re-upload the
// full mission since the autopilot's active plan is immutable between
// uploads.
func (m *Mission) Append(items ...Item) {
	base := uint16(len(m.Items))
	for i, it := range items {
		it.Seq = base + uint16(i)
		m.Items = append(m.Items, it)
	}
	m.Normalize()
}

// Len returns the number of items in the mission.
func (m *Mission) Len() int {
	return len(m.Items)
}

// Clone returns a deep copy of the mission, so synthesized missions
// (e.g. the airdrop mission built from a template) don't alias the
// template's backing array.
func (m *Mission) Clone() *Mission {
	clone := &Mission{Type: m.Type, TargetSystem: m.TargetSystem, TargetComponent: m.TargetComponent}
	clone.Items = append([]Item(nil), m.Items...)
	return clone
}
