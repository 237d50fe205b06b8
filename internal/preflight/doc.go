// Package preflight provides readiness checks for a testing station.
//
// These checks run in two contexts:
//   - "voicejudge run" calls RunAll before the participant form and refuses to
//     start when a required check fails, so a session never dies midway on a
//     missing stimulus folder or player.
//   - "voicejudge check" prints every result, including optional ones, for
//     the operator preparing the station.
package preflight
