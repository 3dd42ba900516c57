package domain

import (
	"fmt"
	"strings"
)

// DefaultFootprint is the width and depth, in blocks, of a Mall stall
// whose footprint is unknown.
const DefaultFootprint = 3

type WarpHallStall struct {
	StallNumber StallNumber `json:"StallNumber"`
	StallName   string      `json:"StallName"`
	IGN         string      `json:"IGN"`
}

type MallStall struct {
	StallNumber StallNumber `json:"StallNumber"`
	StreetName  string      `json:"StreetName"`
	IGN         string      `json:"IGN"`
	StallName   string      `json:"StallName"`
	ItemsSold   string      `json:"ItemsSold"`
	Width       int         `json:"stall_width"`
	Depth       int         `json:"stall_depth"`
}

// MallKey identifies a Mall stall. Two streets may reuse a number.
type MallKey struct {
	StreetName  string
	StallNumber StallNumber
}

func (k MallKey) String() string { return k.StreetName + "/" + k.StallNumber.String() }

// ParseMallKey builds a key from its decoded path parts. Surrounding
// whitespace is not part of a street name.
func ParseMallKey(street, number string) (MallKey, error) {
	street = strings.TrimSpace(street)
	if street == "" {
		return MallKey{}, fmt.Errorf("%w: empty street name", ErrInvalidInput)
	}
	n, err := ParseStallNumber(number)
	if err != nil {
		return MallKey{}, err
	}
	return MallKey{StreetName: street, StallNumber: n}, nil
}

// MallSchema selects which columns the_mall is queried with.
type MallSchema int

const (
	MallSchemaAuto      MallSchema = iota // probe the table on each request
	MallSchemaFootprint                   // stall_width/stall_depth present
	MallSchemaBasic                       // no footprint columns
)

func (s MallSchema) String() string {
	switch s {
	case MallSchemaFootprint:
		return "footprint"
	case MallSchemaBasic:
		return "basic"
	default:
		return "auto"
	}
}

// ParseMallSchema maps a config value to a MallSchema; unknown values mean auto.
func ParseMallSchema(v string) MallSchema {
	switch v {
	case "footprint":
		return MallSchemaFootprint
	case "basic":
		return MallSchemaBasic
	default:
		return MallSchemaAuto
	}
}

type Location string

const (
	LocationWarpHall Location = "warp-hall"
	LocationTheMall  Location = "the-mall"
)

// HasReviews reports whether reviews are kept for stalls in l.
func (l Location) HasReviews() bool { return l == LocationTheMall }
