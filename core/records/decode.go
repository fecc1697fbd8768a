package records

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

type rawRecord struct {
	Name         *string         `json:"name"`
	CurrentFloor json.RawMessage `json:"currentFloor"`
	DropOffFloor json.RawMessage `json:"dropOffFloor"`
}

// DecodeInput parses a create payload. Floors must be JSON numbers with an
// integral value.
func DecodeInput(body []byte) (Input, error) {
	raw, err := decodeRaw(body)
	if err != nil {
		return Input{}, err
	}
	if raw.Name == nil || *raw.Name == "" || missing(raw.CurrentFloor) || missing(raw.DropOffFloor) {
		return Input{}, errMissingFields
	}
	in := Input{Name: *raw.Name}
	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	from, err := decodeFloor("currentFloor", raw.CurrentFloor)
	if err != nil {
		return Input{}, err
	}
	to, err := decodeFloor("dropOffFloor", raw.DropOffFloor)
	if err != nil {
		return Input{}, err
	}
	in.CurrentFloor, in.DropOffFloor = *from, *to
	return in, nil
}

// DecodePatch parses a partial update payload.
func DecodePatch(body []byte) (Patch, error) {
	raw, err := decodeRaw(body)
	if err != nil {
		return Patch{}, err
	}
	p := Patch{Name: raw.Name}
	if p.CurrentFloor, err = decodeFloor("currentFloor", raw.CurrentFloor); err != nil {
		return Patch{}, err
	}
	if p.DropOffFloor, err = decodeFloor("dropOffFloor", raw.DropOffFloor); err != nil {
		return Patch{}, err
	}
	return p, p.Validate()
}

var errMissingFields = &ValidationError{Reason: "Missing required fields: name, currentFloor, dropOffFloor"}

func missing(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func decodeRaw(body []byte) (rawRecord, error) {
	var raw rawRecord
	if len(bytes.TrimSpace(body)) == 0 {
		return raw, nil
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return raw, &ValidationError{Reason: "invalid JSON body"}
	}
	return raw, nil
}

func decodeFloor(field string, raw json.RawMessage) (*int, error) {
	if missing(raw) {
		return nil, nil
	}
	s := strings.TrimSpace(string(raw))
	// json.Number also accepts quoted numbers
	if strings.HasPrefix(s, `"`) {
		return nil, &ValidationError{Field: field, Reason: "must be a number"}
	}
	var n json.Number
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be a number"}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be a number"}
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, &ValidationError{Field: field, Reason: "must be an integer floor"}
	}
	v := int(f)
	return &v, nil
}
