// Command keyframe is the CLI for the prompt-to-video pipeline: submit
// prompts, watch job progress, browse the feed, and run one-shot
// processing without the daemon.
package main
