// Package logs reads the podopt log file for the "podopt logs" command.
//
// Tail returns the last N records with bounded memory and the offset to
// resume from; Follow polls from that offset until the context ends. Records
// written by the console handler span several lines (a header plus indented
// attribute lines) and are kept together so filters see whole records.
package logs
