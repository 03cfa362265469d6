// Package assembly turns per-slide assets into the final video. It runs
// three phases in order: encode one video segment per slide, concatenate
// the segments and mux in the narration track, then verify the muxed
// output before it can be published.
package assembly
