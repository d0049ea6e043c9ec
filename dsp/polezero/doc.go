// Package polezero holds the editable pole and zero sets of a z-plane
// pole-zero map.
//
// A [Model] owns one [Set] of poles and one of zeros. Points keep their
// insertion order so that an index stays valid for the duration of a drag
// gesture. Under [PolicyConjugate] every non-real point is linked to its
// conjugate partner and the pair moves together, which keeps the
// synthesized filter coefficients real. [PolicyFree] leaves each point
// independent.
//
// [Viewport] maps between canvas pixels and plane coordinates. Hit testing,
// dragging and drawing must all go through the same viewport.
package polezero
