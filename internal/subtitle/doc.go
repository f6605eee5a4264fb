// Package subtitle holds the subtitle data model and the multi-format codec.
//
// The model is a plain value hierarchy: a Track owns ordered Segments and an
// optional Style. Segments are validated at construction (positive duration,
// non-empty text) and re-indexed on every append so indices always equal the
// 1-based position within the track, regardless of what the source claimed.
//
// The codec renders a track to SubRip, WebVTT, Advanced SubStation Alpha,
// plain text, or JSON, and parses SubRip/WebVTT back. Each format carries its
// own timestamp grammar: SRT uses comma milliseconds, VTT dot milliseconds,
// ASS centiseconds without a leading zero on hours. Parsing is forgiving —
// malformed blocks are skipped and reported, never fatal.
package subtitle
