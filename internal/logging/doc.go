// Package logging assembles the slog loggers used across voicejudge.
//
// Operators get one compact console line per record, with the session, phase
// and trial folded into a bracketed subject. The log file under the state
// directory always receives JSON lines so sessions can be audited afterwards.
// Participant-facing commands keep the console quiet because stdout belongs to
// the participant screen.
package logging
