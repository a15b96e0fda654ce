package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the literal text form of every expiry date.
const DateLayout = "2006-01-02"

// TimestampLayout is the stored form of a record's creation time.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	ErrInvalidDate  = errors.New("invalid date, use YYYY-MM-DD")
	ErrEmptyName    = errors.New("medicine name must not be empty")
	ErrDuplicate    = errors.New("medicine already exists")
	ErrCorruptStore = errors.New("backing store is corrupted")
)

// Medicine is one inventory entry. Name is the identity key and is matched
// case-insensitively; Expiry holds the literal YYYY-MM-DD text. CreatedAt is
// set once at construction and never recomputed.
type Medicine struct {
	Name      string `json:"name"`
	Strength  string `json:"strength"`
	Form      string `json:"form"`
	Batch     string `json:"batch"`
	Expiry    string `json:"expiry"`
	Location  string `json:"location"`
	CreatedAt string `json:"created_at"`
}

// NewMedicine validates and trims the inputs and returns a record with
// CreatedAt stamped from now. The expiry must be a real calendar date.
func NewMedicine(name, strength, form, batch, expiry, location string, now time.Time) (Medicine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Medicine{}, ErrEmptyName
	}

	exp, err := ParseExpiry(expiry)
	if err != nil {
		return Medicine{}, err
	}

	return Medicine{
		Name:      name,
		Strength:  strings.TrimSpace(strength),
		Form:      strings.TrimSpace(form),
		Batch:     strings.TrimSpace(batch),
		Expiry:    exp.Format(DateLayout),
		Location:  strings.TrimSpace(location),
		CreatedAt: now.Format(TimestampLayout),
	}, nil
}

// ParseExpiry parses a YYYY-MM-DD date, rejecting impossible calendar dates
// such as 2024-13-40.
func ParseExpiry(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ExpiryDate returns the parsed expiry and whether it parsed. Records loaded
// from an older store may carry unparsable dates; queries skip them rather
// than fail.
func (m Medicine) ExpiryDate() (time.Time, bool) {
	t, err := time.Parse(DateLayout, m.Expiry)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SameName reports whether the record's name equals name, case-insensitively.
func (m Medicine) SameName(name string) bool {
	return strings.EqualFold(m.Name, strings.TrimSpace(name))
}
