package models

import (
	"strconv"
	"time"
)

// Attribute keys used by friendfez barrels. Values are stringified so the
// barrel shape stays uniform across types; FezInfo is the typed view.
const (
	FezAttrType        = "feztype"
	FezAttrInfo        = "info"
	FezAttrStartTime   = "starttime"
	FezAttrEndTime     = "endtime"
	FezAttrLocation    = "location"
	FezAttrMinCapacity = "mincapacity"
	FezAttrMaxCapacity = "maxcapacity"
	FezAttrCancelled   = "cancelled"
)

// CancelledPrefix marks the textual fields of a cancelled fez view.
const CancelledPrefix = "[CANCELLED] "

// FezTypes are the activity-type labels offered at fez creation.
var FezTypes = []string{
	"activity",
	"dining",
	"gaming",
	"meetup",
	"music",
	"shore",
	"other",
}

// FezInfo is the typed payload of a friendfez barrel. It round-trips through
// the barrel attribute map so the persisted shape stays attribute-map shaped.
type FezInfo struct {
	FezType     string
	Info        string
	StartTime   string
	EndTime     string
	Location    string
	MinCapacity int
	// MaxCapacity 0 means unlimited.
	MaxCapacity int
	Cancelled   bool
}

// FezInfoFromBarrel decodes the typed fez payload from a barrel's attributes.
// A missing or non-numeric capacity is an invariant violation: every
// friendfez barrel is created with one, so its absence signals corruption.
func FezInfoFromBarrel(b *Barrel) (FezInfo, error) {
	maxStr := b.AttributeValue(FezAttrMaxCapacity)
	if maxStr == "" {
		return FezInfo{}, NewInvariantViolationError("Fez barrel is missing its capacity attribute")
	}
	maxCap, err := strconv.Atoi(maxStr)
	if err != nil || maxCap < 0 {
		return FezInfo{}, NewInvariantViolationError("Fez barrel has a non-numeric capacity attribute")
	}

	minCap := 0
	if minStr := b.AttributeValue(FezAttrMinCapacity); minStr != "" {
		// Min capacity is informational only; a malformed value degrades to 0.
		minCap, _ = strconv.Atoi(minStr)
	}

	return FezInfo{
		FezType:     b.AttributeValue(FezAttrType),
		Info:        b.AttributeValue(FezAttrInfo),
		StartTime:   b.AttributeValue(FezAttrStartTime),
		EndTime:     b.AttributeValue(FezAttrEndTime),
		Location:    b.AttributeValue(FezAttrLocation),
		MinCapacity: minCap,
		MaxCapacity: maxCap,
		Cancelled:   b.AttributeValue(FezAttrCancelled) == "true",
	}, nil
}

// ApplyToBarrel writes the typed payload back into the barrel's attributes.
func (f FezInfo) ApplyToBarrel(b *Barrel) {
	b.SetAttributeValue(FezAttrType, f.FezType)
	b.SetAttributeValue(FezAttrInfo, f.Info)
	b.SetAttributeValue(FezAttrStartTime, f.StartTime)
	b.SetAttributeValue(FezAttrEndTime, f.EndTime)
	b.SetAttributeValue(FezAttrLocation, f.Location)
	b.SetAttributeValue(FezAttrMinCapacity, strconv.Itoa(f.MinCapacity))
	b.SetAttributeValue(FezAttrMaxCapacity, strconv.Itoa(f.MaxCapacity))
	if f.Cancelled {
		b.SetAttributeValue(FezAttrCancelled, "true")
	}
}

// StartsAfter reports whether the fez start time is after t. Unparseable or
// to-be-determined start times count as always upcoming.
func (f FezInfo) StartsAfter(t time.Time) bool {
	start, ok := parseFezTime(f.StartTime)
	if !ok {
		return true
	}
	return start.After(t)
}

// fezTimeDisplayFormat renders stored times for clients, in UTC.
const fezTimeDisplayFormat = "Mon Jan 2, 2006 15:04 MST"

// parseFezTime accepts epoch-seconds strings or RFC 3339 strings. "0", the
// empty string, and anything unparseable mean "to be determined".
func parseFezTime(s string) (time.Time, bool) {
	if s == "" || s == "0" {
		return time.Time{}, false
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// FezTimeString renders a stored fez time string for display. Times that are
// unset, zero, or unparseable render as "TBD".
func FezTimeString(s string) string {
	t, ok := parseFezTime(s)
	if !ok {
		return "TBD"
	}
	return t.Format(fezTimeDisplayFormat)
}

// ValidFezType reports whether label is one of the offered activity types.
func ValidFezType(label string) bool {
	for _, t := range FezTypes {
		if t == label {
			return true
		}
	}
	return false
}
