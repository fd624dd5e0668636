// Package reconcile aligns persisted card status with rendered file
// presence. It runs on deck open and on explicit request, never during an
// active generation run, and only reads the filesystem.
package reconcile
