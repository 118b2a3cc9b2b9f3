package primitives

// PTCStatus is the payload timeliness committee's view of a payload.
type PTCStatus uint64

// Payload status votes cast by PTC members.
const (
	PAYLOAD_ABSENT PTCStatus = iota
	PAYLOAD_PRESENT
	PAYLOAD_WITHHELD
)
