package core

// Assert checks a structural invariant. Debug builds (tag bat6debug) panic on
// violation; release builds record a diagnostic and keep the control loop
// running.
func Assert(cond bool, msg string) {
	if cond {
		return
	}
	if assertPanics {
		panic(msg)
	}
	RecordDiag(DiagAssert, 0, 0)
	DebugPrintln("[ASSERT] " + msg)
}
