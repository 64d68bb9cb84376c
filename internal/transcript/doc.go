// Package transcript loads timestamped plain-text transcripts and answers
// positional timestamp queries over them.
//
// A transcript holds one conversational turn per line. A line may start with
// a timestamp token of the form HH:MM:SS-T; everything after the token is the
// spoken text. Lines are addressed 1-based so annotation line numbers can be
// used directly, and raw text keeps its trailing newline.
package transcript
