// Package playback plays stimulus files through an external player binary.
//
// Player.Play blocks until the clip finishes; there is no skip. Cancelling the
// context kills the player process, which is how the session abort interrupts
// a clip mid-play.
package playback
