package instrument

import (
	"math"

	"waveform-streamer/src/codec"
	"waveform-streamer/src/models"
)

// Waveform is a published acquisition of one channel.
type Waveform struct {
	Name                string
	Samples             codec.Samples
	HorizontalSpacing   float64
	HorizontalZeroIndex float64
	VerticalSpacing     float64
	VerticalOffset      float64
	VerticalUnits       string
	HorizontalUnits     string
	DataID              uint64
	TransactionID       uint64
}

// Measurement is a scalar result. It has no sample array and cannot be
// streamed as a waveform.
type Measurement struct {
	Name          string
	Value         float64
	Units         string
	TransactionID uint64
}

// -----------------------------------------------------------------------------

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// synthesize builds the object of one channel for acquisition seq.
func synthesize(ch models.MChannelConfig, dataID, seq uint64) interface{} {
	n := ch.RecordLength
	dt := orDefault(ch.HorizontalSpacing, 1e-9)
	amp := orDefault(ch.Amplitude, 1)
	freq := ch.Frequency
	if freq == 0 && n > 0 {
		freq = 4 / (float64(n) * dt)
	}
	phase := float64(seq) * 0.1

	tone := func(i int) float64 {
		return amp * math.Sin(2*math.Pi*freq*float64(i)*dt+phase)
	}
	quadrature := func(i int) float64 {
		return amp * math.Cos(2*math.Pi*freq*float64(i)*dt+phase)
	}

	wf := &Waveform{
		Name:                ch.Name,
		HorizontalSpacing:   dt,
		HorizontalZeroIndex: ch.HorizontalZero,
		VerticalOffset:      ch.VerticalOffset,
		VerticalUnits:       ch.VerticalUnits,
		HorizontalUnits:     ch.HorizontalUnits,
		DataID:              dataID,
		TransactionID:       seq,
	}
	if wf.VerticalUnits == "" {
		wf.VerticalUnits = "V"
	}
	if wf.HorizontalUnits == "" {
		wf.HorizontalUnits = "s"
	}

	switch ch.Type {
	case "float32":
		wf.VerticalSpacing = orDefault(ch.VerticalSpacing, 1)
		s := make(codec.Float32Samples, n)
		for i := range s {
			s[i] = float32(tone(i) / wf.VerticalSpacing)
		}
		wf.Samples = s
	case "normalized":
		wf.VerticalSpacing = orDefault(ch.VerticalSpacing, 1)
		s := make(codec.NormalizedSamples, n)
		for i := range s {
			s[i] = tone(i) / wf.VerticalSpacing
		}
		wf.Samples = s
	case "int16":
		wf.VerticalSpacing = orDefault(ch.VerticalSpacing, amp/32000)
		s := make(codec.Int16Samples, n)
		for i := range s {
			s[i] = int16(clamp(tone(i)/wf.VerticalSpacing, math.MinInt16, math.MaxInt16))
		}
		wf.Samples = s
	case "int8":
		wf.VerticalSpacing = orDefault(ch.VerticalSpacing, amp/120)
		s := make(codec.Int8Samples, n)
		for i := range s {
			s[i] = int8(clamp(tone(i)/wf.VerticalSpacing, math.MinInt8, math.MaxInt8))
		}
		wf.Samples = s
	case "iq16":
		wf.VerticalSpacing = orDefault(ch.VerticalSpacing, amp/32000)
		s := make(codec.IQ16Samples, n)
		for i := range s {
			s[i] = codec.IQ16{
				I: int16(clamp(quadrature(i)/wf.VerticalSpacing, math.MinInt16, math.MaxInt16)),
				Q: int16(clamp(tone(i)/wf.VerticalSpacing, math.MinInt16, math.MaxInt16)),
			}
		}
		wf.Samples = s
	case "iq32":
		wf.VerticalSpacing = orDefault(ch.VerticalSpacing, amp/2e9)
		s := make(codec.IQ32Samples, n)
		for i := range s {
			s[i] = codec.IQ32{
				I: int32(clamp(quadrature(i)/wf.VerticalSpacing, math.MinInt32, math.MaxInt32)),
				Q: int32(clamp(tone(i)/wf.VerticalSpacing, math.MinInt32, math.MaxInt32)),
			}
		}
		wf.Samples = s
	case "digital8":
		wf.VerticalSpacing = 1
		s := make(codec.Digital8Samples, n)
		for i := range s {
			s[i] = uint8(bits(i, dt, freq, 8))
		}
		wf.Samples = s
	case "digital16":
		wf.VerticalSpacing = 1
		s := make(codec.Digital16Samples, n)
		for i := range s {
			s[i] = uint16(bits(i, dt, freq, 16))
		}
		wf.Samples = s
	case "measurement":
		return &Measurement{Name: ch.Name, Value: amp * math.Sin(phase), Units: wf.VerticalUnits, TransactionID: seq}
	default:
		return nil
	}
	return wf
}

// bits packs square waves of increasing frequency, one per bit.
func bits(i int, dt, freq float64, width int) uint32 {
	var v uint32
	for b := 0; b < width; b++ {
		if math.Sin(2*math.Pi*freq*float64(b+1)*float64(i)*dt) >= 0 {
			v |= 1 << b
		}
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, math.Round(v)))
}
