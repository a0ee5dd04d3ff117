// Package theme resolves the colour palettes used by the terminal host.
// Palettes are TOML files in ~/.config/winstack/themes/ or bundled with the
// binary; a user file shadows a bundled palette of the same name.
package theme
