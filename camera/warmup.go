package camera

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Warmup consumes frames for the given duration and measures frame-rate
// stability before the caller starts real work on the stream.
//
// Blocks for the whole duration. Returns an error if the session is not
// active or fewer than 2 frames arrive.
func (s *Session) Warmup(ctx context.Context, duration time.Duration) (*WarmupStats, error) {
	if !s.Active() {
		return nil, fmt.Errorf("camera: session %s not active", s.ID)
	}

	slog.Info("camera: warmup started", "session_id", s.ID, "duration", duration)

	warmupCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	start := time.Now()
	var frameTimes []time.Time

collect:
	for {
		select {
		case <-warmupCtx.Done():
			break collect
		case frame, ok := <-s.frames:
			if !ok {
				return nil, fmt.Errorf("camera: stream closed during warmup")
			}
			frameTimes = append(frameTimes, frame.Timestamp)
		}
	}

	elapsed := time.Since(start)
	if len(frameTimes) < 2 {
		return nil, fmt.Errorf(
			"camera: not enough frames during warmup (got %d, need at least 2)",
			len(frameTimes),
		)
	}

	stats := CalculateFPSStats(frameTimes, elapsed)
	slog.Info("camera: warmup complete",
		"session_id", s.ID,
		"frames", stats.FramesReceived,
		"fps_mean", fmt.Sprintf("%.2f", stats.FPSMean),
		"fps_stddev", fmt.Sprintf("%.2f", stats.FPSStdDev),
		"stable", stats.IsStable,
	)
	return stats, nil
}

// CalculateFPSStats derives FPS statistics from frame timestamps.
//
// Stability threshold: stddev of instantaneous FPS < 15% of mean FPS.
func CalculateFPSStats(frameTimes []time.Time, totalDuration time.Duration) *WarmupStats {
	stats := &WarmupStats{
		FramesReceived: len(frameTimes),
		Duration:       totalDuration,
	}
	if len(frameTimes) < 2 {
		return stats
	}

	span := frameTimes[len(frameTimes)-1].Sub(frameTimes[0]).Seconds()
	if span > 0 {
		stats.FPSMean = float64(len(frameTimes)-1) / span
	}

	// Instantaneous FPS per inter-frame interval
	instant := make([]float64, 0, len(frameTimes)-1)
	for i := 1; i < len(frameTimes); i++ {
		dt := frameTimes[i].Sub(frameTimes[i-1]).Seconds()
		if dt > 0 {
			instant = append(instant, 1.0/dt)
		}
	}
	if len(instant) == 0 {
		return stats
	}

	var sum float64
	for _, v := range instant {
		sum += v
	}
	mean := sum / float64(len(instant))

	var variance float64
	for _, v := range instant {
		variance += (v - mean) * (v - mean)
	}
	stats.FPSStdDev = math.Sqrt(variance / float64(len(instant)))

	if stats.FPSMean > 0 {
		stats.IsStable = stats.FPSStdDev < 0.15*stats.FPSMean
	}
	return stats
}
