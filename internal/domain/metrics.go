package domain

import "time"

// minFirstTokenSeconds is the smallest first-token latency taken at face value.
// The completion call is not streamed, so readings below it are measurement
// noise and the total duration is split evenly instead.
const minFirstTokenSeconds = 0.01

// Timings brackets one completion request.
type Timings struct {
	Start       time.Time
	FirstResult time.Time
	End         time.Time
	Tokens      TokenCount
}

// Metrics is the latency breakdown displayed with an answer. Times are seconds.
type Metrics struct {
	TimeToFirstToken float64 `json:"ttft"`
	TimeForRemaining float64 `json:"trt"`
	TokensPerSecond  float64 `json:"tps"`
	RateKnown        bool    `json:"tps_known"`
}

// CalcTimes derives time to first token, time for the remaining tokens and the
// token rate from raw timestamps in seconds.
//
// A non-positive total duration yields a rate of exactly 1. A first-token time
// under 10ms is replaced by half the total duration, and the remaining time is
// computed from the corrected value.
func CalcTimes(start, firstToken, end float64, tokenCount int) (ttft, remaining, tps float64) {
	ttft = firstToken - start
	total := end - start

	if total > 0 {
		tps = float64(tokenCount) / total
	} else {
		tps = 1
	}

	if ttft < minFirstTokenSeconds {
		ttft = total / 2
	}
	remaining = total - ttft
	return ttft, remaining, tps
}

// Metrics converts the timings into display metrics. When the token count is
// unknown the rate is left at zero and flagged as unknown.
func (t Timings) Metrics() Metrics {
	first := t.FirstResult.Sub(t.Start).Seconds()
	end := t.End.Sub(t.Start).Seconds()

	n, known := t.Tokens.Value()
	ttft, remaining, tps := CalcTimes(0, first, end, n)
	if !known {
		tps = 0
	}
	return Metrics{
		TimeToFirstToken: ttft,
		TimeForRemaining: remaining,
		TokensPerSecond:  tps,
		RateKnown:        known,
	}
}
