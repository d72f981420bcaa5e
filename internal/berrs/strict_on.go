//go:build berlin_strict

package berrs

// HandleInternal panics on an Internal-kind error, for development builds
// (-tags berlin_strict) that want a hard failure instead of a silently
// dropped record or candidate.
func HandleInternal(err error) {
	if err != nil {
		panic(err)
	}
}
