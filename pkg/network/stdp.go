package network

import "math"

// STDPParams holds the four spike-timing-dependent-plasticity constants the
// scheduler applies on every retrograde delivery.
type STDPParams struct {
	APlus    float64 // LTP amplitude
	AMinus   float64 // LTD amplitude
	TauPlus  float64 // LTP decay constant, ms
	TauMinus float64 // LTD decay constant, ms
}

// DefaultSTDPParams returns typical STDP constants for a standard Hebbian
// learning window.
func DefaultSTDPParams() STDPParams {
	return STDPParams{APlus: 0.01, AMinus: 0.012, TauPlus: 20, TauMinus: 20}
}

// Delta computes the STDP weight delta for a temporal offset dtMS
// (post-neuron last-fire minus dispatch time):
//
//	dtMS > 0: +APlus  * exp(-dtMS / TauPlus)   (LTP, strictly positive)
//	dtMS < 0: -AMinus * exp( dtMS / TauMinus)  (LTD, strictly negative)
//	dtMS = 0: 0
//
// The exact-zero case is carved out as its own branch rather than falling
// into the dtMS>=0 branch (which would otherwise evaluate to +APlus), so
// that simultaneous pre/post spikes produce no weight change.
func (p STDPParams) Delta(dtMS float64) float64 {
	switch {
	case dtMS > 0:
		return p.APlus * math.Exp(-dtMS/p.TauPlus)
	case dtMS < 0:
		return -p.AMinus * math.Exp(dtMS/p.TauMinus)
	default:
		return 0
	}
}
