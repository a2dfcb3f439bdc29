package entity

import "time"

// FrameQuantum is the screen time credited to one captured frame.
const FrameQuantum = 2 * time.Second

// FrameSample is one captured frame as recorded by the screen recorder.
type FrameSample struct {
	AppName    string
	WindowName string
	Timestamp  time.Time
}

// FrameSeconds converts a frame count to seconds of screen time.
func FrameSeconds(frames int) float64 {
	return float64(frames) * FrameQuantum.Seconds()
}
