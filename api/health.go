package api

// Health is the contract for endpoint liveness reporting.
type Health interface {
	// LivenessCheck reports whether a named endpoint is still serving.
	LivenessCheck(name string) (bool, error)
}
