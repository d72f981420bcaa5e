//go:build !berlin_strict

package berrs

// HandleInternal swallows an Internal-kind error in production builds: the
// caller has already logged the violation and is expected to drop the
// offending record or candidate rather than bring the process down.
func HandleInternal(err error) {}
