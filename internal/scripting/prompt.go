package scripting

import (
	"fmt"
	"strings"

	"keyframe/internal/storyboard"
)

// buildSystemPrompt composes the generation instructions for one style
// policy. The model must answer with a single JSON document matching the
// script schema.
func buildSystemPrompt(policy storyboard.Policy) string {
	var b strings.Builder
	b.WriteString("You are a viral content creator specializing in short form video. ")
	b.WriteString("Generate a compelling, engaging script.\n\n")

	fmt.Fprintf(&b, "Style: %s\nStyle instructions: %s\n\n", policy.Name, policy.Instructions)
	fmt.Fprintf(&b, "Generate exactly %d slides. ", policy.SlideCount)
	fmt.Fprintf(&b, "The overall word count for the entire script should be %s words.\n\n", policy.WordBudget)

	b.WriteString("Each slide has three components:\n")
	b.WriteString("1. narration_prompt: the exact spoken text for this slide (conversational, natural, flows well when spoken aloud)\n")
	b.WriteString("2. image_prompt: a highly detailed visual description for AI image generation (be specific about composition, style, mood, colors, subjects)\n")
	fmt.Fprintf(&b, "3. duration: time in seconds, typically around %.1f seconds per slide\n\n", policy.SlideSeconds)

	b.WriteString("IMAGE PROMPT GUIDELINES:\n")
	b.WriteString("Be extremely specific and descriptive; include subject, setting, lighting, mood, composition, and art style. ")
	b.WriteString("Good example: \"A cozy coffee shop interior at sunrise, warm golden light streaming through large windows, ")
	b.WriteString("a steaming latte on a wooden table in the foreground, soft bokeh background, cinematic photography style, warm color palette\". ")
	b.WriteString("Bad example: \"A coffee shop\". Avoid text in images; describe visual scenes only. ")
	b.WriteString("Each image should be distinct and visually interesting, and should match and enhance the narration.\n\n")

	b.WriteString("NARRATION PROMPT GUIDELINES:\n")
	b.WriteString("Write as if speaking directly to the viewer. Use short, punchy sentences that are easy to understand when heard. ")
	b.WriteString("Make it conversational and engaging, not robotic. Each narration should naturally flow into the next.\n\n")

	b.WriteString("Return ONLY valid JSON in this exact format:\n")
	fmt.Fprintf(&b, `{
  "title": "Engaging Video Title That Captures the Topic",
  "slides": [
    {
      "narration_prompt": "Natural spoken text for this slide",
      "image_prompt": "Extremely detailed visual description for AI image generation",
      "duration": %.1f
    }
  ]
}`, policy.SlideSeconds)
	fmt.Fprintf(&b, "\nwith exactly %d entries in the slides array.", policy.SlideCount)
	return b.String()
}

// buildUserPrompt phrases the job request for the model.
func buildUserPrompt(style, prompt string) string {
	return fmt.Sprintf("Create a %s style video about: %s", style, strings.TrimSpace(prompt))
}
