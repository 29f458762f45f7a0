package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerdcore/reflexsub/internal/clock"
	"github.com/nerdcore/reflexsub/internal/vad"
)

var vadFrameSamples int

var vadCmd = &cobra.Command{
	Use:   "vad <raw-pcm-file>",
	Short: "Run 16-bit little-endian mono PCM through the adaptive speech-activity detector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read pcm file: %w", err)
		}

		cfg := vad.Config{
			SampleRateHz:         app.cfg.VAD.SampleRateHz,
			OnsetFrames:          app.cfg.VAD.OnsetFrames,
			OffsetFrames:         app.cfg.VAD.OffsetFrames,
			EnergyHistorySize:    app.cfg.VAD.EnergyHistorySize,
			AdaptationRate:       app.cfg.VAD.AdaptationRate,
			SpeechToNoiseRatio:   app.cfg.VAD.SpeechToNoiseRatio,
			MinThreshold:         app.cfg.VAD.MinThreshold,
			MaxThreshold:         app.cfg.VAD.MaxThreshold,
			SelfVoiceCooldownMs:  app.cfg.VAD.SelfVoiceCooldownMs,
			ZCREnabled:           app.cfg.VAD.ZCREnabled,
			ZCRBandMin:           app.cfg.VAD.ZCRBandMin,
			ZCRBandMax:           app.cfg.VAD.ZCRBandMax,
			FingerprintEnabled:   app.cfg.VAD.FingerprintEnabled,
			FingerprintSampleCap: app.cfg.VAD.FingerprintSampleCap,
			RecentSegmentsCap:    app.cfg.VAD.RecentSegmentsCap,
		}
		detector := vad.NewDetector(cfg, clock.Wall{})

		frameBytes := vadFrameSamples * 2
		for off := 0; off+frameBytes <= len(data); off += frameBytes {
			r := detector.Analyze(data[off : off+frameBytes])
			if r.IsUtteranceComplete {
				fmt.Printf("frame %d: utterance complete (energy=%.4f confidence=%.2f)\n", off/frameBytes, r.Energy, r.Confidence)
			}
		}

		stats := detector.Stats()
		fmt.Printf("total_frames=%d speech_frames=%d segments=%d threshold=%.4f\n",
			stats.TotalFrames, stats.SpeechFrames, len(stats.RecentSegments), detector.CurrentThreshold())
		return nil
	},
}

func init() {
	vadCmd.Flags().IntVar(&vadFrameSamples, "frame-samples", 160, "Samples per analysis frame (160 = 10ms at 16kHz)")
}
