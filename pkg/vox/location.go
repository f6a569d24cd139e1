package vox

// ToMilliseconds converts pos to absolute milliseconds using a single tempo and meter
func ToMilliseconds(pos Position, tempo TempoChange, meter MeterChange) float64 {
	// 120 BPM = 500 ms per beat
	msPerBeat := tempo.MsPerBeat()

	fromMeasures := float64(pos.Measure*meter.Numerator) * msPerBeat
	fromBeats := float64(pos.Beat) * msPerBeat
	fromOffset := (msPerBeat / TicksPerBeat) * float64(pos.Offset)

	return fromMeasures + fromBeats + fromOffset
}
