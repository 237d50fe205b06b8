// Package experiment drives one participant through the voice-judgment task.
//
// The package owns the task logic and declares the ports it needs from the
// outside world: a Display for screens, a Keyboard for timed key presses, a
// Player for audio, a Form for participant details and a Clock for timed
// pauses. internal/terminal and internal/media/playback provide the real
// implementations; tests substitute scripted fakes.
//
// Sequencer runs a single trial through its fixed state sequence
// (fixation, playback, response, confidence, naturalness). Runner strings the
// phases of a session together (participant form, welcome, consent, practice,
// main block, summary) and hands the finished Session to a Sink for
// persistence. Aborting during practice or the main block still persists
// every trial completed before the abort.
package experiment
