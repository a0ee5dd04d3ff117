// Package geometry provides frame arithmetic for stacked surfaces, including
// the resisted placement applied when a surface is dragged above its rest position.
package geometry
