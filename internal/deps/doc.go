// Package deps resolves the external programs used for playback and audio
// inspection.
package deps
