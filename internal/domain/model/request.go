package model

// RawRequest is a fully formed request read from a request source
type RawRequest struct {
	// Line is the 1-based line the request was read from, 0 if it did not come from a file
	Line int
	// Data is sent verbatim
	Data []byte
}

// BatchReport summarizes a batch run
type BatchReport struct {
	// Attempted is the number of requests forwarded
	Attempted int
	// Responded is the number of requests that produced a non-empty response
	Responded int
	// NoResponse is the number of requests that failed or produced nothing
	NoResponse int
}
