package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/flaxandteal/berlin/internal/berrs"
	"github.com/flaxandteal/berlin/internal/normalize"
)

// rawLocation is the tagged-union envelope every dataset record arrives in,
// grounded in AnyLocation from berlin-core/src/location.rs: {"<c>":
// encoding, "i": natural id, "d": encoding-specific fields}.
type rawLocation struct {
	C string          `json:"<c>"`
	I string          `json:"i"`
	D json.RawMessage `json:"d"`
}

type rawState struct {
	Name      string `json:"name"`
	Short     string `json:"short"`
	Alpha2    string `json:"alpha2"`
	Alpha3    string `json:"alpha3"`
	Continent string `json:"continent"`
	Lat       string `json:"lat,omitempty"`
	Lon       string `json:"lon,omitempty"`
}

type rawSubdivision struct {
	Name      string `json:"name"`
	Supercode string `json:"supercode"`
	Subcode   string `json:"subcode"`
	Level     string `json:"level"`
}

type rawLocode struct {
	Name             string `json:"name"`
	Supercode        string `json:"supercode"`
	Subcode          string `json:"subcode"`
	SubdivisionName  string `json:"subdivision_name,omitempty"`
	SubdivisionCode  string `json:"subdivision_code,omitempty"`
	FunctionCode     string `json:"function_code"`
	Lat              string `json:"lat,omitempty"`
	Lon              string `json:"lon,omitempty"`
	Supedup          string `json:"supedup,omitempty"`
}

// decodeFile parses one dataset JSON object (id -> rawLocation) and returns
// the raw records whose "<c>" tag matches want, erroring as DatasetInvalid
// on any malformed record — the Go analogue of json_decode.rs's
// AnyLocation::from_raw, but validating the tag against the file's expected
// encoding instead of panicking on an unexpected standard.
func decodeFile(data []byte, want Encoding) (map[string]rawLocation, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, berrs.Dataset("dataset file is not a JSON object", err)
	}
	out := make(map[string]rawLocation, len(obj))
	for id, raw := range obj {
		var rl rawLocation
		if err := json.Unmarshal(raw, &rl); err != nil {
			return nil, berrs.Dataset(fmt.Sprintf("record %q", id), err)
		}
		if Encoding(rl.C) != want {
			return nil, berrs.Dataset(
				fmt.Sprintf("record %q: expected encoding %s, got %s", id, want, rl.C), nil)
		}
		out[id] = rl
	}
	return out, nil
}

func parseOptionalFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func normalizeNonEmpty(field, value string) (string, error) {
	n := normalize.Normalize(value)
	if n == "" {
		return "", berrs.Dataset(fmt.Sprintf("field %q is empty after normalization", field), nil)
	}
	return n, nil
}
