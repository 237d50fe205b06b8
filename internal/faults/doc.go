// Package faults defines the error taxonomy shared by the experiment packages.
//
// Failures are tagged with one of the exported sentinel markers through Wrap so
// the CLI can classify them with errors.Is and pick a process exit code without
// parsing messages. ErrAborted is not a failure: it marks the participant's
// early-exit path, which still ends in a normal persistence step.
package faults
