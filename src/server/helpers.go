package server

import (
	"fmt"
	"strconv"

	"waveform-streamer/src/models"
)

// -----------------------------------------------------------------------------

// filterSummary copies summary keeping only the listed symbols (all of them
// when symbols is empty) and stamps it with msgType.
func filterSummary(summary *models.MCycleSummary, symbols []string, msgType string) *models.MCycleSummary {
	out := *summary
	out.Type = msgType
	out.Symbols = make(map[string]models.MSymbolSummary, len(summary.Symbols))
	for sym, data := range summary.Symbols {
		if len(symbols) == 0 || contains(symbols, sym) {
			out.Symbols[sym] = data
		}
	}
	return &out
}

// -----------------------------------------------------------------------------

func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count '%s'", raw)
	}
	return n, nil
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
