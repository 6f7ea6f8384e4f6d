package models

// -----------------------------------------------------------------------------
// Cycle summary pushed to viewers after every completed acquisition cycle
// -----------------------------------------------------------------------------

type MCycleSummary struct {
	Type              string                    `json:"type"` // "INITIAL" or "UPDATE"
	Acquisition       uint64                    `json:"acquisition"`
	Timestamp         int64                     `json:"timestamp"`
	Symbols           map[string]MSymbolSummary `json:"symbols"`
	ProcessingMetrics MProcessingMetrics        `json:"processing_metrics"`
}

type MSymbolSummary struct {
	SampleCount   uint64  `json:"sample_count"`
	WireType      string  `json:"wire_type"`
	TransactionID uint64  `json:"transaction_id"`
	Mean          float64 `json:"mean"`
	Minimum       float64 `json:"minimum"`
	Maximum       float64 `json:"maximum"`
	PeakToPeak    float64 `json:"peak_to_peak"`
	StdDev        float64 `json:"std_dev"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for viewer messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
}
