// Package results writes completed sessions to per-participant logfiles.
//
// Each session becomes one CSV file named after the participant and the
// session end time, with one row per completed main trial and the acoustic
// feature columns appended. An optional spreadsheet twin is written with
// excelize. When the output directory cannot be written the persister retries
// once in the fallback directory.
package results
