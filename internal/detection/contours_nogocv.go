//go:build !gocv

package detection

func openCVTracer() (Tracer, error) {
	return nil, ErrBackendUnavailable
}
