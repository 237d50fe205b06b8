// Package terminal drives the participant station from a text console.
//
// Display renders full-screen messages on stdout, Keyboard puts stdin into raw
// mode and timestamps single key presses, and Form collects participant
// details with line prompts before raw mode is entered. Together they satisfy
// the experiment package's Display, Keyboard and Form ports.
package terminal
