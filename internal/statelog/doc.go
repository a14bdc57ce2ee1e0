// Package statelog stores the activity transition log.
//
// The log is a UTF-8 text file with one transition per line:
//
//	<seconds since epoch>\t<state>\n
//
// Only state changes are stored: appending the state that is already current
// is a no-op, so no two adjacent lines carry the same state. The last line's
// state is in effect from its timestamp until now.
//
// Reads scan the file from its tail so that the current state and recent
// ranges never load the whole history. A history rewrite backs the file up,
// then replaces it through a temporary file and rename.
//
// The store assumes a single writer. Readers may run while the writer appends;
// a line that is still being written is never returned.
package statelog
