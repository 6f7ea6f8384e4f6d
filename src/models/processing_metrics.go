package models

// MProcessingMetrics represents the timing of one completed acquisition cycle.
type MProcessingMetrics struct {
	CycleTimeSeconds float64 `json:"cycle_time_seconds"`
	ReadTimeSeconds  float64 `json:"read_time_seconds"`
	SymbolsRequested int     `json:"symbols_requested"`
	SymbolsRead      int     `json:"symbols_read"`
}
