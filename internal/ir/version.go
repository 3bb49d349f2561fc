package ir

// Version constants for the dump format and client.
const (
	// DumpVersion is the dump file format version written by this client.
	DumpVersion = "1.0"

	// ClientVersion is the apiwrapper client version.
	ClientVersion = "0.3.0"
)
