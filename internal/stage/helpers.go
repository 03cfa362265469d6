package stage

import (
	"errors"
	"strings"

	"keyframe/internal/services"
	"keyframe/internal/storyboard"
)

// ParseScript decodes the script JSON persisted on a job. On failure it
// returns a services.ErrScriptValidation suitable for stage Execute methods.
func ParseScript(raw string) (storyboard.Script, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return storyboard.Script{}, services.Wrap(
			services.ErrScriptValidation, "stage", "parse script",
			"Script missing; rerun script generation", nil)
	}
	script, err := storyboard.Decode([]byte(raw))
	if err != nil {
		return storyboard.Script{}, services.Wrap(
			services.ErrScriptValidation, "stage", "parse script",
			"Script invalid; rerun script generation", err)
	}
	if len(script.Slides) == 0 {
		return storyboard.Script{}, services.Wrap(
			services.ErrScriptValidation, "stage", "parse script",
			"Script has no slides; rerun script generation",
			errors.New("empty slides"))
	}
	return script, nil
}
