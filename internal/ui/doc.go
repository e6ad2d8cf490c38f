// Package ui holds the terminal styling for the sonar CLI.
//
// Output goes through a [Palette] so commands never hard-code colors; tests
// use [Plain] to compare text without escape sequences.
package ui
