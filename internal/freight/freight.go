// Package freight holds the static rule tables of the classification engine:
// the NMFC freight class enumeration, the density breakpoint table used for
// non-hazardous goods, and the hazard class rule table used for hazmat.
//
// All tables are fixed at compile time. Nothing in this package performs I/O.
package freight

import (
	"fmt"
	"strconv"
	"strings"
)

// Class is an NMFC freight class such as "92.5".
type Class string

const (
	Class50   Class = "50"
	Class55   Class = "55"
	Class60   Class = "60"
	Class65   Class = "65"
	Class70   Class = "70"
	Class77_5 Class = "77.5"
	Class85   Class = "85"
	Class92_5 Class = "92.5"
	Class100  Class = "100"
	Class110  Class = "110"
	Class125  Class = "125"
	Class150  Class = "150"
	Class175  Class = "175"
	Class200  Class = "200"
	Class250  Class = "250"
	Class300  Class = "300"
	Class400  Class = "400"
	Class500  Class = "500"
)

var classes = [...]Class{
	Class50, Class55, Class60, Class65, Class70, Class77_5,
	Class85, Class92_5, Class100, Class110, Class125, Class150,
	Class175, Class200, Class250, Class300, Class400, Class500,
}

// Classes returns the 18 valid freight classes in ascending order.
func Classes() []Class {
	out := make([]Class, len(classes))
	copy(out, classes[:])
	return out
}

// Valid reports whether c is one of the enumerated freight classes.
func (c Class) Valid() bool {
	for _, v := range classes {
		if v == c {
			return true
		}
	}
	return false
}

// Float returns the numeric value of the class.
func (c Class) Float() float64 {
	f, _ := strconv.ParseFloat(string(c), 64)
	return f
}

func (c Class) String() string {
	return string(c)
}

// ParseClass normalizes s ("92.50", " 85 ", "77.5") into a Class.
func ParseClass(s string) (Class, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClass, s)
	}

	c := Class(strconv.FormatFloat(f, 'f', -1, 64))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidClass, s)
	}
	return c, nil
}
