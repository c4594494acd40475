package core

// SpinUntil polls ready up to maxSpins times and returns ErrTimeout if it
// never reports true. Hardware-ready waits use this so a dead peripheral
// surfaces as an error instead of a hang.
func SpinUntil(ready func() bool, maxSpins uint32) error {
	for i := uint32(0); i < maxSpins; i++ {
		if ready() {
			return nil
		}
	}
	RecordDiag(DiagSpinTimeout, 0, maxSpins)
	return ErrTimeout
}
