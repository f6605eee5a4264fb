// Command captiond transcribes media files into subtitles.
//
// The run command drives input files through the full pipeline (probe,
// extract, transcribe, render, optional burn-in). styles lists the
// available presets, check verifies the environment, and config manages
// the TOML configuration file.
package main
