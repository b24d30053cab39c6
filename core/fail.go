package core

// Fail codes classify fatal invariant violations. They exist so a target's
// fail handler can blink or log something distinguishable before halting.
const (
	FailCodeGeneric uint8 = iota + 1
	FailCodeInvalidEvent
	FailCodeInvalidElement
	FailCodeInvalidPin
	FailCodeInvalidState
	FailCodeInvalidConfig
	FailCodeStorage
)

var failHandler func(code uint8)

// SetFailHandler installs fn to run before the firmware halts on a fatal
// error. Targets use it to force outputs into a safe state and signal the
// failure on a status LED. fn must not return if it can avoid it; if it does
// return, FailCode panics.
func SetFailHandler(fn func(code uint8)) {
	failHandler = fn
}

// Fail halts the firmware on a generic invariant violation.
func Fail() {
	FailCode(FailCodeGeneric)
}

// FailCode halts the firmware. Invariant violations are programming errors:
// continuing could leave the key output energized, so there is no recovery
// path and no error return.
func FailCode(code uint8) {
	// Clear the handler first so a failure inside it cannot recurse.
	if h := failHandler; h != nil {
		failHandler = nil
		h(code)
	}
	panic("fatal error, code " + utoa(uint32(code)))
}
