package core

import (
	"encoding/json"
	"strings"
)

// The info.json shapes differ by mod kind. Fields of interest are modelled
// with named, typed, individually-optional fields; everything else in the
// file is ignored.

type vehicleInfoJSON struct {
	Name       string    `json:"Name"`
	Author     string    `json:"Author"`
	Brand      string    `json:"Brand"`
	BodyStyle  string    `json:"Body Style"`
	Years      yearRange `json:"Years"`
	Country    string    `json:"Country"`
	DerbyClass string    `json:"Derby Class"`
	Type       string    `json:"Type"`
	Version    string    `json:"Version"`
}

type mapInfoJSON struct {
	Title       string      `json:"title"`
	Authors     flexStrings `json:"authors"`
	Description string      `json:"description"`
	Biome       string      `json:"biome"`
	Roads       []string    `json:"roads"`
	SuitableFor []string    `json:"suitablefor"`
	Previews    []string    `json:"previews"`
	Version     string      `json:"version"`
}

type genericInfoJSON struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Authors     flexStrings `json:"authors"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
}

type yearRange struct {
	Min json.Number `json:"min"`
	Max json.Number `json:"max"`
}

func (y yearRange) String() string {
	min := y.Min.String()
	max := y.Max.String()
	switch {
	case min == "" && max == "":
		return ""
	case min == "":
		return max
	case max == "":
		return min
	default:
		return min + "-" + max
	}
}

// flexStrings accepts either a JSON string or an array of strings; mod
// authors use both forms for the "authors" field.
type flexStrings []string

func (s *flexStrings) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*s = nil
		} else {
			*s = flexStrings{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*s = many
		return nil
	}
	// Unexpected shape: treat as absent rather than failing the whole file.
	*s = nil
	return nil
}

func (s flexStrings) join() string {
	return strings.Join(s, ", ")
}
