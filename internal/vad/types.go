// Package vad implements the adaptive, self-voice-excluding speech
// activity detector (spec component C5): frame energy/zero-crossing
// analysis, noise-floor and threshold adaptation, an onset/offset
// state machine, and self-voice exclusion via a timed cooldown plus an
// optional acoustic fingerprint. A Detector is not safe for concurrent
// use — one instance per audio stream, mirroring the retrieved pack's
// VAD session contract ("a SessionHandle should not be shared across
// goroutines").
package vad

// State is the detector's current position in the onset/offset state
// machine. The spec table's "SpeechOffset" and "Pause" labels name the
// same transitional state — the frame counter winding down toward
// OffsetFrames — so both collapse to StatePause here.
type State int

const (
	StateSilence State = iota
	StateSpeechOnset
	StateSpeaking
	StatePause
)

func (s State) String() string {
	switch s {
	case StateSilence:
		return "Silence"
	case StateSpeechOnset:
		return "SpeechOnset"
	case StateSpeaking:
		return "Speaking"
	case StatePause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// Action is the detector's advice to the caller about what to do with
// the frame just analyzed.
type Action int

const (
	ActionDiscardSegment Action = iota
	ActionWaitForMore
	ActionProcess
)

func (a Action) String() string {
	switch a {
	case ActionDiscardSegment:
		return "DiscardSegment"
	case ActionWaitForMore:
		return "WaitForMore"
	case ActionProcess:
		return "Process"
	default:
		return "Unknown"
	}
}

// AnalysisResult is returned by every call to Analyze.
type AnalysisResult struct {
	HasSpeech           bool
	State               State
	Energy              float64
	Confidence          float64
	SuggestedAction     Action
	IsUtteranceComplete bool
}

// Config holds the detector's tunable knobs. Defaults mirror
// spec.md §4.5.
type Config struct {
	SampleRateHz         int
	OnsetFrames          int
	OffsetFrames         int
	EnergyHistorySize    int
	AdaptationRate       float64
	SpeechToNoiseRatio   float64
	MinThreshold         float64
	MaxThreshold         float64
	SelfVoiceCooldownMs  int64
	ZCREnabled           bool
	ZCRBandMin           float64
	ZCRBandMax           float64
	FingerprintEnabled   bool
	FingerprintSampleCap int
	RecentSegmentsCap    int
}

// DefaultConfig returns the configuration matching spec.md's stated
// defaults.
func DefaultConfig() Config {
	return Config{
		SampleRateHz:         16000,
		OnsetFrames:          2,
		OffsetFrames:         8,
		EnergyHistorySize:    100,
		AdaptationRate:       0.02,
		SpeechToNoiseRatio:   2.5,
		MinThreshold:         0.015,
		MaxThreshold:         0.15,
		SelfVoiceCooldownMs:  0,
		ZCREnabled:           true,
		ZCRBandMin:           0.02,
		ZCRBandMax:           0.5,
		FingerprintEnabled:   false,
		FingerprintSampleCap: 12,
		RecentSegmentsCap:    50,
	}
}

// Segment summarizes one completed speech utterance for Stats.
type Segment struct {
	DurationFrames int
	PeakEnergy     float64
}

// Stats are the detector's running totals.
type Stats struct {
	TotalFrames    int
	SpeechFrames   int
	RecentSegments []Segment
	CurrentState   State
}
