// Package classes maps bodyweights to weight-class labels and parses
// user-supplied weight-class tokens.
package classes

import (
	"strconv"
	"strings"
)

// System identifies a weight-class classification system.
type System string

// Supported classification systems.
const (
	SystemIPF  System = "ipf"
	SystemPara System = "para"
	SystemWP   System = "wp"
)

// Systems lists every supported system, in dataset column order.
var Systems = []System{SystemIPF, SystemPara, SystemWP}

// Class bracket upper bounds, ascending. A bodyweight above the last
// bound lands in the open-ended "<last>kg+" class.
var (
	ipfMen    = []float64{59, 66, 74, 83, 93, 105, 120}
	ipfWomen  = []float64{47, 52, 57, 63, 69, 76, 84}
	paraMen   = []float64{49, 54, 59, 65, 72, 80, 88, 97, 107}
	paraWomen = []float64{41, 45, 50, 55, 61, 67, 73, 79, 86}
	wpMen     = []float64{62, 69, 77, 85, 94, 105, 120}
	wpWomen   = []float64{48, 53, 58, 64, 72, 84, 100}
)

func bounds(system System, female bool) []float64 {
	switch system {
	case SystemPara:
		if female {
			return paraWomen
		}
		return paraMen
	case SystemWP:
		if female {
			return wpWomen
		}
		return wpMen
	default:
		if female {
			return ipfWomen
		}
		return ipfMen
	}
}

// Assign returns the class label for a bodyweight under one system,
// e.g. "83kg" or "120kg+". Non-positive bodyweights get an empty label.
func Assign(system System, female bool, bodyweight float64) string {
	if bodyweight <= 0 {
		return ""
	}
	bs := bounds(system, female)
	for _, b := range bs {
		if bodyweight <= b {
			return Label(b, false)
		}
	}
	return Label(bs[len(bs)-1], true)
}

// Label formats a bracket bound as the on-disk label: "<value>kg" with a
// trailing "+" for the open-ended top class.
func Label(value float64, open bool) string {
	s := strconv.FormatFloat(value, 'f', -1, 64) + "kg"
	if open {
		s += "+"
	}
	return s
}

// Bracket returns the exclusive lower and inclusive upper bodyweight
// bound of a class label under one system, so the same classification
// can be expressed as a range condition (e.g. inside a SQL query).
// open is true for the top class, whose upper bound is unbounded.
func Bracket(system System, female bool, class string) (lo, hi float64, open, ok bool) {
	bs := bounds(system, female)
	prev := 0.0
	for _, b := range bs {
		if Label(b, false) == class {
			return prev, b, false, true
		}
		prev = b
	}
	top := bs[len(bs)-1]
	if Label(top, true) == class {
		return top, 0, true, true
	}
	return 0, 0, false, false
}

// Token is a parsed weight-class filter token.
type Token struct {
	System System
	// Class is the normalized on-disk label ("83kg", "100kg+").
	Class string
}

// ParseToken parses the `[system:]value[+]` grammar. The system defaults
// to ipf when omitted. Empty input or the "all" sentinel (any case)
// yields ok=false: no constraint. A malformed value also yields
// ok=false, matching the lenient treatment of unknown window tokens.
func ParseToken(raw string) (Token, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "all" {
		return Token{}, false
	}
	system := SystemIPF
	if i := strings.IndexByte(s, ':'); i >= 0 {
		switch System(s[:i]) {
		case SystemIPF:
			system = SystemIPF
		case SystemPara:
			system = SystemPara
		case SystemWP:
			system = SystemWP
		default:
			return Token{}, false
		}
		s = s[i+1:]
	}
	open := strings.HasSuffix(s, "+")
	s = strings.TrimSuffix(s, "+")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return Token{}, false
	}
	return Token{System: system, Class: Label(v, open)}, true
}
