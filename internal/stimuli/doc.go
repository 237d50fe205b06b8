// Package stimuli discovers audio stimuli and turns them into trials.
//
// Each condition folder (real/easy, fake/hard, practice_real, ...) is scanned
// non-recursively for files with a recognized extension. A trial's
// authenticity, difficulty, and condition come only from the folder it was
// found in and are never recomputed. Build returns trials in a deterministic
// order; Shuffle produces the randomized presentation order.
package stimuli
