package response

import (
	"encoding/json"
	"time"
)

// TimestampFormat is the UTC millisecond layout browsers produce with toISOString.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// ErrorResp is the JSON body of every error response.
type ErrorResp struct {
	Error string `json:"error"`
}

// Timestamp is a time that marshals in TimestampFormat.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(TimestampFormat))
}
