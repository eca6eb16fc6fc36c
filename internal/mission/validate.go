package mission

import (
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/apperr"
	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/geofence"
)

// Validate checks the mission against spec.md's pre-upload invariants:
// sequence indices start at 0, every command is recognized, and every
// nav item's position falls inside fence (if fence is non-nil).
func (m *Mission) Validate(fence *geofence.Fence) error {
	if len(m.Items) == 0 {
		return apperr.New(apperr.FileEmpty, "mission has no items")
	}
	if m.Items[0].Seq != 0 {
		return apperr.New(apperr.BadSequence, "first item seq = %d, want 0", m.Items[0].Seq)
	}

	for i, it := range m.Items {
		if uint16(i) != it.Seq {
			return apperr.New(apperr.BadSequence, "item %d has seq %d, want dense zero-based sequence", i, it.Seq)
		}
		if !knownCommands[it.Command] {
			return apperr.New(apperr.MalformedItem, "item seq %d: unknown command %d", it.Seq, int(it.Command))
		}
		if fence != nil && it.Command.IsNav() {
			if !fence.Contains(it.Coordinate()) {
				return apperr.New(apperr.OutsideFence, "item seq %d: position outside geofence", it.Seq)
			}
		}
	}

	return nil
}
