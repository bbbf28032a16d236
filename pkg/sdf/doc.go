// Package sdf reads and writes the simplified structure format used by
// molview: a whitespace separated subset of the MDL molfile.
//
// # Format
//
//	line 1-3   header (title, program, comment), ignored
//	line 4     counts: atom_count bond_count [anything...]
//	next N     atoms:  x y z element [anything...]
//	next M     bonds:  a1 a2 epairs [anything...]   (1-based atom numbers)
//
// Anything after the last bond line (such as "M  END" or SD data items) is
// ignored. Bond atom numbers are converted to 0-based indices on read and
// back to 1-based on write.
//
// # Errors
//
// Parse failures are *errors.Error values with one of the codes
// MALFORMED_HEADER, MALFORMED_ATOM, MALFORMED_BOND, TRUNCATED_INPUT or
// INVALID_BOND_INDEX. The message names the 1-based line number. A failed
// parse never returns a partial molecule.
package sdf
