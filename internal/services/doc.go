// Package services defines the shared error taxonomy for the generation
// pipeline.
//
// Sentinel markers distinguish the failure classes the pipeline recognises:
// renderer process failures, timeouts, missing artifacts, integrity
// rejections, and pre-flight validation problems. The Wrap helper attaches
// component and operation context while preserving the marker for errors.Is
// classification, so the worker and controller can react uniformly without
// string matching.
package services
