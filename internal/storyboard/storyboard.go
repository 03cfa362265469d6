package storyboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Slide is one narrated unit of the video: one image, one narration segment,
// one duration. Index is 0-based and defines the canonical order.
type Slide struct {
	Index             int     `json:"index"`
	Narration         string  `json:"narration_prompt"`
	ImagePrompt       string  `json:"image_prompt"`
	EstimatedDuration float64 `json:"duration"`
	// ActualDuration is the measured narration length. Zero until duration
	// reconciliation has run; once set it supersedes EstimatedDuration for
	// every downstream consumer.
	ActualDuration float64 `json:"actual_duration,omitempty"`
}

// EffectiveDuration returns the measured duration when reconciliation has
// run, the script-time estimate otherwise.
func (s Slide) EffectiveDuration() float64 {
	if s.ActualDuration > 0 {
		return s.ActualDuration
	}
	return s.EstimatedDuration
}

// Script is the validated output of the script stage.
type Script struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// TotalEstimatedDuration sums the script-time duration estimates.
func (s Script) TotalEstimatedDuration() float64 {
	var total float64
	for _, slide := range s.Slides {
		total += slide.EstimatedDuration
	}
	return total
}

// TotalEffectiveDuration sums the effective per-slide durations.
func (s Script) TotalEffectiveDuration() float64 {
	var total float64
	for _, slide := range s.Slides {
		total += slide.EffectiveDuration()
	}
	return total
}

// Reconciled reports whether every slide carries a measured duration.
func (s Script) Reconciled() bool {
	if len(s.Slides) == 0 {
		return false
	}
	for _, slide := range s.Slides {
		if slide.ActualDuration <= 0 {
			return false
		}
	}
	return true
}

// Decode parses a script JSON document and stamps slide indexes in order.
func Decode(data []byte) (Script, error) {
	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return Script{}, fmt.Errorf("decode script: %w", err)
	}
	for i := range script.Slides {
		script.Slides[i].Index = i
	}
	return script, nil
}

// Encode serializes the script for queue persistence.
func (s Script) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode script: %w", err)
	}
	return string(data), nil
}

// FromJSON restores a persisted script, returning the zero Script when the
// payload is empty or unreadable.
func FromJSON(payload string) Script {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Script{}
	}
	script, err := Decode([]byte(payload))
	if err != nil {
		return Script{}
	}
	return script
}

// Validate applies the script acceptance rules for the supplied policy, in
// order: slide count first, then per-slide field checks. The returned error
// names the first offending slide.
func Validate(script Script, policy Policy) error {
	if len(script.Slides) != policy.SlideCount {
		return fmt.Errorf("expected %d slides, got %d", policy.SlideCount, len(script.Slides))
	}
	for i, slide := range script.Slides {
		if strings.TrimSpace(slide.Narration) == "" {
			return fmt.Errorf("slide %d missing narration text", i)
		}
		if strings.TrimSpace(slide.ImagePrompt) == "" {
			return fmt.Errorf("slide %d missing image description", i)
		}
		if slide.EstimatedDuration <= 0 {
			return fmt.Errorf("slide %d has non-positive duration %.2f", i, slide.EstimatedDuration)
		}
	}
	return nil
}

// WithinTargetRange reports whether the total estimated duration falls in
// the policy's advisory target window.
func WithinTargetRange(script Script, policy Policy) bool {
	total := script.TotalEstimatedDuration()
	return total >= policy.MinTotalSeconds && total <= policy.MaxTotalSeconds
}
