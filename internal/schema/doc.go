// Package schema validates dump files against an embedded CUE schema.
//
// A dump file is JSON, and JSON is valid CUE, so the file bytes are compiled
// as a CUE value and unified with the #Dump definition plus the definition
// of the file's kind when one exists. Kinds without a definition only have
// to satisfy #Dump.
package schema
