// Package storyboard defines the script data model produced by the script
// stage and consumed by every downstream pipeline stage: the ordered slide
// list, the per-style generation policies, and the validation rules a
// generated script must satisfy before any media work begins.
package storyboard
