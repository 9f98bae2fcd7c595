// Package ui provides semantic terminal formatting for CLI output.
//
// Formatters pair a color (used on capable terminals) with a plain-text
// decoration (used when color is disabled), so output stays readable in
// both modes. Color is disabled when NO_COLOR is set or when fatih/color
// detects a non-terminal destination.
//
// # Usage
//
//	msg := ui.Success.Sprint("✓") + " Imported " + ui.Highlight.Sprint(name)
package ui
