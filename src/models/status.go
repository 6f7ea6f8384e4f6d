package models

import "fmt"

// Status is the result code carried by every reply of the waveform service.
type Status int32

const (
	StatusUnspecified Status = iota
	Success
	UnknownFailure
	InUseFailure
	NoConnectionFailure
	OutsideSequenceFailure
	TypeMismatchFailure
	SourcenameMissingFailure
)

var statusNames = map[Status]string{
	StatusUnspecified:        "Unspecified",
	Success:                  "Success",
	UnknownFailure:           "UnknownFailure",
	InUseFailure:             "InUseFailure",
	NoConnectionFailure:      "NoConnectionFailure",
	OutsideSequenceFailure:   "OutsideSequenceFailure",
	TypeMismatchFailure:      "TypeMismatchFailure",
	SourcenameMissingFailure: "SourcenameMissingFailure",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}
