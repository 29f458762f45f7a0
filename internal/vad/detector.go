package vad

import (
	"sort"
	"time"

	"github.com/nerdcore/reflexsub/internal/clock"
)

// Detector is an adaptive, stateful speech-activity detector for one
// audio stream. It is not safe for concurrent use.
type Detector struct {
	cfg Config
	clk clock.Clock

	state         State
	onsetCounter  int
	offsetCounter int

	noiseFloor float64
	threshold  float64
	energyHist []float64

	selfVoiceHardActive   bool
	selfVoiceCooldownUntl time.Time
	fingerprint           *fingerprintProfile

	totalFrames  int
	speechFrames int

	currentSegmentFrames     int
	currentSegmentPeakEnergy float64
	recentSegments           []Segment
}

// NewDetector constructs a Detector starting in Silence with the
// threshold pinned to MinThreshold until the noise floor adapts.
func NewDetector(cfg Config, clk clock.Clock) *Detector {
	d := &Detector{
		cfg:       cfg,
		clk:       clk,
		state:     StateSilence,
		threshold: cfg.MinThreshold,
	}
	if cfg.FingerprintEnabled {
		d.fingerprint = newFingerprintProfile(cfg.FingerprintSampleCap)
	}
	return d
}

// Analyze classifies one audio frame and advances the state machine.
// Invalid input (too short, or an odd byte count) never raises — it
// returns a benign discard result instead.
func (d *Detector) Analyze(frame []byte) AnalysisResult {
	if !validFrame(frame) {
		return AnalysisResult{SuggestedAction: ActionDiscardSegment}
	}

	if d.selfVoiceSuppressed(frame) {
		d.state = StateSilence
		d.totalFrames++
		return AnalysisResult{State: StateSilence, SuggestedAction: ActionDiscardSegment}
	}

	samples := decodeSamples(frame)
	energy := rmsEnergy(samples)
	zcr := zeroCrossingRate(samples)
	aboveThreshold := energy >= d.threshold

	d.totalFrames++
	if !aboveThreshold {
		d.adaptNoiseFloor(energy)
	}

	utteranceComplete := d.transition(aboveThreshold)

	if d.state == StateSpeaking || d.state == StatePause {
		d.currentSegmentFrames++
		if energy > d.currentSegmentPeakEnergy {
			d.currentSegmentPeakEnergy = energy
		}
	}
	if utteranceComplete {
		d.completeSegment()
	}

	hasSpeech := d.state == StateSpeaking || d.state == StatePause
	if hasSpeech {
		d.speechFrames++
	}

	confidence := 0.0
	if hasSpeech {
		confidence = d.confidenceFor(energy, zcr)
	}

	action := ActionDiscardSegment
	switch {
	case utteranceComplete:
		action = ActionProcess
	case d.state == StateSpeechOnset:
		action = ActionWaitForMore
	case hasSpeech:
		action = ActionProcess
	}

	return AnalysisResult{
		HasSpeech:           hasSpeech,
		State:               d.state,
		Energy:              energy,
		Confidence:          confidence,
		SuggestedAction:     action,
		IsUtteranceComplete: utteranceComplete,
	}
}

// transition advances the onset/offset state machine for one frame
// and reports whether this frame completed an utterance.
func (d *Detector) transition(aboveThreshold bool) bool {
	switch d.state {
	case StateSilence:
		if aboveThreshold {
			d.state = StateSpeechOnset
			d.onsetCounter = 1
		}
	case StateSpeechOnset:
		if aboveThreshold {
			d.onsetCounter++
			if d.onsetCounter >= d.cfg.OnsetFrames {
				d.state = StateSpeaking
				d.offsetCounter = 0
			}
		} else {
			d.state = StateSilence
			d.onsetCounter = 0
		}
	case StateSpeaking:
		if !aboveThreshold {
			d.state = StatePause
			d.offsetCounter = 1
		}
	case StatePause:
		if aboveThreshold {
			d.state = StateSpeaking
			d.offsetCounter = 0
		} else {
			d.offsetCounter++
			if d.offsetCounter >= d.cfg.OffsetFrames {
				d.state = StateSilence
				d.offsetCounter = 0
				return true
			}
		}
	}
	return false
}

func (d *Detector) completeSegment() {
	d.recentSegments = append(d.recentSegments, Segment{
		DurationFrames: d.currentSegmentFrames,
		PeakEnergy:     d.currentSegmentPeakEnergy,
	})
	if len(d.recentSegments) > d.cfg.RecentSegmentsCap {
		d.recentSegments = d.recentSegments[len(d.recentSegments)-d.cfg.RecentSegmentsCap:]
	}
	d.currentSegmentFrames = 0
	d.currentSegmentPeakEnergy = 0
}

// confidenceFor combines energy-over-threshold with a ZCR-plausibility
// factor, multiplicatively, clamped to [0, 1].
func (d *Detector) confidenceFor(energy, zcr float64) float64 {
	base := clamp((energy/d.threshold)/2, 0, 1)
	zcrFactor := 1.0
	if d.cfg.ZCREnabled && (zcr < d.cfg.ZCRBandMin || zcr > d.cfg.ZCRBandMax) {
		zcrFactor = 0.5
	}
	return clamp(base*zcrFactor, 0, 1)
}

// adaptNoiseFloor updates the noise floor toward an EMA of recent
// low-quantile energy, then recomputes the clamped threshold.
func (d *Detector) adaptNoiseFloor(energy float64) {
	d.energyHist = append(d.energyHist, energy)
	if len(d.energyHist) > d.cfg.EnergyHistorySize {
		d.energyHist = d.energyHist[len(d.energyHist)-d.cfg.EnergyHistorySize:]
	}

	lowQuantile := lowQuantileOf(d.energyHist)
	d.noiseFloor += d.cfg.AdaptationRate * (lowQuantile - d.noiseFloor)
	d.threshold = clamp(d.noiseFloor*d.cfg.SpeechToNoiseRatio, d.cfg.MinThreshold, d.cfg.MaxThreshold)
}

func lowQuantileOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := len(sorted) / 4
	return sorted[idx]
}

// CalibrateToAmbient forces a one-shot noise-floor update from frame.
// Repeated calls smooth rather than replace the noise floor.
func (d *Detector) CalibrateToAmbient(frame []byte) {
	if !validFrame(frame) {
		return
	}
	d.adaptNoiseFloor(rmsEnergy(decodeSamples(frame)))
}

// NotifySelfSpeechStarted immediately forces Silence and activates
// self-voice exclusion: every Analyze call returns a discard result
// until NotifySelfSpeechEnded's cooldown elapses.
func (d *Detector) NotifySelfSpeechStarted() {
	d.state = StateSilence
	d.selfVoiceHardActive = true
	d.selfVoiceCooldownUntl = time.Time{}
}

// NotifySelfSpeechEnded ends the hard-active phase and keeps
// exclusion active for cooldownMs longer, to swallow echo tails. A
// non-positive cooldownMs falls back to the configured default.
func (d *Detector) NotifySelfSpeechEnded(cooldownMs int64) {
	d.selfVoiceHardActive = false
	cooldown := cooldownMs
	if cooldown <= 0 {
		cooldown = d.cfg.SelfVoiceCooldownMs
	}
	d.selfVoiceCooldownUntl = d.clk.Now().Add(time.Duration(cooldown) * time.Millisecond)
}

// selfVoiceSuppressed reports whether frame should be discarded as
// self-voice: either the hard-active window, the timed cooldown, or
// an acoustic fingerprint match against the registered baseline.
func (d *Detector) selfVoiceSuppressed(frame []byte) bool {
	if d.selfVoiceHardActive {
		return true
	}
	if d.clk.Now().Before(d.selfVoiceCooldownUntl) {
		return true
	}
	if d.fingerprint != nil {
		return d.fingerprint.matches(extractFingerprint(frame, d.cfg.SampleRateHz))
	}
	return false
}

// RegisterSelfVoiceAudio feeds frame into the acoustic fingerprint
// baseline. A no-op when fingerprinting is disabled.
func (d *Detector) RegisterSelfVoiceAudio(frame []byte) {
	if !d.cfg.FingerprintEnabled || !validFrame(frame) {
		return
	}
	if d.fingerprint == nil {
		d.fingerprint = newFingerprintProfile(d.cfg.FingerprintSampleCap)
	}
	d.fingerprint.register(extractFingerprint(frame, d.cfg.SampleRateHz))
}

// ClearSelfVoiceProfile resets the acoustic fingerprint baseline.
func (d *Detector) ClearSelfVoiceProfile() {
	if d.fingerprint != nil {
		d.fingerprint.clear()
	}
}

// ResetState returns the detector to Silence, discarding onset/offset
// progress and any in-flight segment, but preserves the adapted
// threshold and fingerprint baseline.
func (d *Detector) ResetState() {
	d.state = StateSilence
	d.onsetCounter = 0
	d.offsetCounter = 0
	d.currentSegmentFrames = 0
	d.currentSegmentPeakEnergy = 0
}

// Stats returns the detector's running totals.
func (d *Detector) Stats() Stats {
	return Stats{
		TotalFrames:    d.totalFrames,
		SpeechFrames:   d.speechFrames,
		RecentSegments: append([]Segment(nil), d.recentSegments...),
		CurrentState:   d.state,
	}
}

// CurrentThreshold returns the detector's current adapted energy
// threshold, always within [MinThreshold, MaxThreshold].
func (d *Detector) CurrentThreshold() float64 {
	return d.threshold
}

func validFrame(frame []byte) bool {
	return len(frame) >= minFrameBytes && len(frame)%2 == 0
}
