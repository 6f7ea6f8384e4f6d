package models

// MConfig Structure
type MConfig struct {
	Name        string             `yaml:"name"`
	Host        string             `yaml:"host"`
	Port        int                `yaml:"port"`
	LogLevel    string             `yaml:"log_level"`
	GrpcHost    string             `yaml:"grpc_host"`
	GrpcPort    int                `yaml:"grpc_port"`
	Instrument  MInstrumentConfig  `yaml:"instrument"`
	Client      MClientConfig      `yaml:"client"`
	Diagnostics MDiagnosticsConfig `yaml:"diagnostics"`
}

type MInstrumentConfig struct {
	SingleConnection      bool             `yaml:"single_connection"`
	AcquisitionIntervalMs int              `yaml:"acquisition_interval_ms"`
	DefaultChunkSize      int              `yaml:"default_chunk_size"`
	Channels              []MChannelConfig `yaml:"channels"`
}

type MChannelConfig struct {
	Name              string  `yaml:"name"`
	Type              string  `yaml:"type"` // float32, normalized, int16, int8, iq16, iq32, digital8, digital16, measurement
	RecordLength      int     `yaml:"record_length"`
	HorizontalSpacing float64 `yaml:"horizontal_spacing"`
	HorizontalZero    float64 `yaml:"horizontal_zero_index"`
	VerticalSpacing   float64 `yaml:"vertical_spacing"`
	VerticalOffset    float64 `yaml:"vertical_offset"`
	VerticalUnits     string  `yaml:"vertical_units"`
	HorizontalUnits   string  `yaml:"horizontal_units"`
	Frequency         float64 `yaml:"frequency"`
	Amplitude         float64 `yaml:"amplitude"`
}

type MClientConfig struct {
	ServerAddress   string   `yaml:"server_address"`
	Symbols         []string `yaml:"symbols"`
	ChunkSize       int      `yaml:"chunk_size"`
	UpdateCriterion []string `yaml:"update_criterion"`
	NonBlocking     bool     `yaml:"non_blocking"`
	ParallelReads   bool     `yaml:"parallel_reads"`
	StopGraceMs     int      `yaml:"stop_grace_ms"`
	ConnectRetries  int      `yaml:"connect_retries"`
}

type MDiagnosticsConfig struct {
	JournalPath string `yaml:"journal_path"` // Optional, empty disables the sqlite journal
	HistorySize int    `yaml:"history_size"`
}
