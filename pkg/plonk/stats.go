package plonk

import "github.com/marlinplonk/plonk-go/internal/registry"

// RegistryStats is a snapshot of handle occupancy.
type RegistryStats struct {
	Live      int
	Allocated uint64
	Reclaimed uint64
	LiveBytes int64
	Budget    int64
}

// Stats reports the counters of the active registry.
func Stats() RegistryStats {
	s := registry.Default().Stats()
	return RegistryStats{
		Live:      s.Live,
		Allocated: s.Allocated,
		Reclaimed: s.Reclaimed,
		LiveBytes: s.LiveBytes,
		Budget:    s.Budget,
	}
}
