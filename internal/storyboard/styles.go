package storyboard

import (
	"sort"
	"strings"
)

// ImageBackend selects which image-generation endpoint a style uses.
type ImageBackend string

const (
	BackendDALLE ImageBackend = "dalle"
	BackendFlux  ImageBackend = "flux"
)

// Policy bundles everything a style fixes for one job: slide count, word
// budget, target total duration, and the image backend with its resolution.
type Policy struct {
	Name            string
	SlideCount      int
	WordBudget      string
	SlideSeconds    float64
	MinTotalSeconds float64
	MaxTotalSeconds float64
	ImageBackend    ImageBackend
	ImageWidth      int
	ImageHeight     int
	Instructions    string
}

// DefaultStyle is the policy key used when a requested style is unknown.
const DefaultStyle = "Default"

var policies = map[string]Policy{
	"Educational": {
		Name:            "Educational",
		SlideCount:      6,
		WordBudget:      "300-360",
		SlideSeconds:    10,
		MinTotalSeconds: 55,
		MaxTotalSeconds: 65,
		ImageBackend:    BackendDALLE,
		ImageWidth:      1792,
		ImageHeight:     1024,
		Instructions: "Script an educational video that briefly teaches a concept. " +
			"Use facts, explanations, and real-world examples; break complexities into parts when needed. " +
			"Each slide should build on the previous one logically but use simple language. " +
			"Image prompts should show diagrams, illustrations, or visualizations.",
	},
	"Storytelling": {
		Name:            "Storytelling",
		SlideCount:      10,
		WordBudget:      "300-360",
		SlideSeconds:    6,
		MinTotalSeconds: 55,
		MaxTotalSeconds: 65,
		ImageBackend:    BackendFlux,
		ImageWidth:      1920,
		ImageHeight:     1080,
		Instructions: "Script a story with a clear beginning, middle, and end. " +
			"Depending on the prompt, amplify the comedy, suspense, or horror aspect. " +
			"Use vivid descriptions and sensory details. Each slide should logically advance the plot. " +
			"Image prompts should be very visual and capture the dialogue visually.",
	},
	"Meme": {
		Name:            "Meme",
		SlideCount:      10,
		WordBudget:      "180-200",
		SlideSeconds:    3,
		MinTotalSeconds: 25,
		MaxTotalSeconds: 35,
		ImageBackend:    BackendFlux,
		ImageWidth:      1920,
		ImageHeight:     1080,
		Instructions: "Script a funny, relatable short video that takes inspiration from current " +
			"short-form trends. Use modern internet humor, be playful or ironic where appropriate, " +
			"and reference common experiences everyone understands. Each slide should build toward a " +
			"punchline or funny moment. Image prompts should be visually comedic or exaggerated.",
	},
	DefaultStyle: {
		Name:            DefaultStyle,
		SlideCount:      5,
		WordBudget:      "180-200",
		SlideSeconds:    6,
		MinTotalSeconds: 25,
		MaxTotalSeconds: 35,
		ImageBackend:    BackendFlux,
		ImageWidth:      1920,
		ImageHeight:     1080,
		Instructions:    "Create a basic video that follows the prompt.",
	},
}

// ResolveStyle returns the policy for the named style, falling back to the
// Default entry for unknown keys.
func ResolveStyle(style string) Policy {
	if policy, ok := policies[strings.TrimSpace(style)]; ok {
		return policy
	}
	return policies[DefaultStyle]
}

// StyleNames lists the configured style keys in sorted order.
func StyleNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
