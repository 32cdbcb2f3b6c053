package kernelerr

import "grasskernel/logging"

// halt logs a fatal kernel condition at error level before OnFatal runs.
func halt(err error) {
	kind, _ := GetKind(err)
	logging.Error("FATAL", "kind", kind.String(), "error", err)
}
