package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for pipeline failures. Each stage wraps its errors with
// the marker matching the failure so the driver can record a stable kind on
// the terminal job status.
var (
	ErrScriptGeneration     = errors.New("script generation error")
	ErrScriptValidation     = errors.New("script validation error")
	ErrMediaGeneration      = errors.New("media generation error")
	ErrDurationMeasurement  = errors.New("duration measurement error")
	ErrSegmentEncode        = errors.New("segment encode error")
	ErrAssembly             = errors.New("assembly error")
	ErrAssemblyVerification = errors.New("assembly verification error")
	ErrPublish              = errors.New("publish error")

	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrTransient     = errors.New("transient failure")
)

var kindNames = []struct {
	marker error
	name   string
}{
	{ErrScriptGeneration, "script_generation"},
	{ErrScriptValidation, "script_validation"},
	{ErrMediaGeneration, "media_generation"},
	{ErrDurationMeasurement, "duration_measurement"},
	{ErrSegmentEncode, "segment_encode"},
	{ErrAssembly, "assembly"},
	{ErrAssemblyVerification, "assembly_verification"},
	{ErrPublish, "publish"},
	{ErrExternalTool, "external_tool"},
	{ErrConfiguration, "configuration"},
	{ErrTransient, "transient"},
}

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker. The marker should be one of the exported
// sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the stable kind string for a wrapped pipeline error, or
// "unknown" when the error carries no marker.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range kindNames {
		if errors.Is(err, entry.marker) {
			return entry.name
		}
	}
	return "unknown"
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
