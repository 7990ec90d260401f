// Package reconcile corrects draft caption text against the known script.
//
// The draft track is sent to a text-correction capability together with the
// script; the capability is instructed to fix mis-heard words while keeping
// every index and time code. The response replaces the draft. Its structure
// is compared with the draft and drift is logged; with EnforceStructure set,
// drift fails the stage instead.
package reconcile
