// Package checked provides overflow-checked size arithmetic.
//
// Buffer sizes in the codec are derived from caller-supplied lengths
// (for example the escaper's 2n+1 worst case). These helpers report
// overflow instead of wrapping so a size can never silently shrink.
//
// This package is internal to the codec.
package checked
