// Package textutil provides text helpers for filenames and enumerated choices.
//
// The primary use cases are:
//   - Sanitizing participant IDs and timestamps before they become part of a
//     logfile name
//   - Matching free-form operator input against an enumerated choice list
//     (gender, native language, familiarity) without caring about case
package textutil
