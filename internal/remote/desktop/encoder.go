package desktop

// EncoderChangeProbe tells the encoder selection logic whether the capture
// hardware or driver state may have changed since it last asked.
type EncoderChangeProbe struct{}

// ChangedSinceLastCheck always reports true: this platform does not track
// GPU or driver state, so callers re-enumerate encoders every time.
func (EncoderChangeProbe) ChangedSinceLastCheck() bool {
	return true
}
