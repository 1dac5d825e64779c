package biometric

// #region quality

// QualityScore derives a capture quality in [0, 1] as the mean of four
// independent factors. Low-quality readings are not discarded: quality
// feeds decision confidence downstream, so a degraded sensor degrades
// gracefully instead of creating data gaps.
func QualityScore(r Reading) float64 {
	factors := [4]float64{}

	// 1. Capture confidence as reported.
	factors[0] = r.Confidence

	// 2. Gaze within screen bounds.
	if r.GazePosition[0] >= 0 && r.GazePosition[0] <= 1 &&
		r.GazePosition[1] >= 0 && r.GazePosition[1] <= 1 {
		factors[1] = 1.0
	} else {
		factors[1] = 0.5
	}

	// 3. Pupil diameter plausibility (2-8mm typical, normalized).
	if r.PupilDiameter >= 0.1 && r.PupilDiameter <= 1.0 {
		factors[2] = 1.0
	} else {
		factors[2] = 0.7
	}

	// 4. Blink rate plausibility (5-20 blinks/min, normalized per second).
	if r.BlinkRate >= 0.08 && r.BlinkRate <= 0.33 {
		factors[3] = 1.0
	} else {
		factors[3] = 0.8
	}

	return (factors[0] + factors[1] + factors[2] + factors[3]) / 4.0
}

// #endregion quality
