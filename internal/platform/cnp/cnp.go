// Package cnp validates Romanian personal numeric codes (Cod Numeric
// Personal): S YY MM DD JJ NNN C, where S encodes sex and century, JJ the
// county and C a weighted checksum digit.
package cnp

import (
	"errors"
	"fmt"
	"time"
)

const Length = 13

var weights = [12]int{2, 7, 9, 1, 4, 6, 3, 5, 8, 2, 7, 9}

var (
	ErrLength   = errors.New("cnp must have exactly 13 digits")
	ErrDigits   = errors.New("cnp must contain only digits")
	ErrSex      = errors.New("cnp sex/century digit must be 1-9")
	ErrDate     = errors.New("cnp encodes an invalid birth date")
	ErrChecksum = errors.New("cnp checksum digit mismatch")
)

// Validate reports the first problem found with code, or nil.
func Validate(code string) error {
	if len(code) != Length {
		return ErrLength
	}
	digits := make([]int, Length)
	for i := 0; i < Length; i++ {
		ch := code[i]
		if ch < '0' || ch > '9' {
			return ErrDigits
		}
		digits[i] = int(ch - '0')
	}
	if digits[0] == 0 {
		return ErrSex
	}
	if _, err := birthDate(digits); err != nil {
		return err
	}
	if ControlDigit(code[:12]) != digits[12] {
		return ErrChecksum
	}
	return nil
}

// IsValid is Validate as a predicate.
func IsValid(code string) bool {
	return Validate(code) == nil
}

// ControlDigit computes the checksum digit for the first 12 digits of a CNP.
// Non-digit input yields -1.
func ControlDigit(first12 string) int {
	if len(first12) != 12 {
		return -1
	}
	sum := 0
	for i := 0; i < 12; i++ {
		ch := first12[i]
		if ch < '0' || ch > '9' {
			return -1
		}
		sum += int(ch-'0') * weights[i]
	}
	c := sum % 11
	if c == 10 {
		return 1
	}
	return c
}

// BirthDate extracts the birth date encoded in a valid CNP.
func BirthDate(code string) (time.Time, error) {
	if err := Validate(code); err != nil {
		return time.Time{}, err
	}
	digits := make([]int, Length)
	for i := range digits {
		digits[i] = int(code[i] - '0')
	}
	return birthDate(digits)
}

func century(sex int) int {
	switch sex {
	case 1, 2:
		return 1900
	case 3, 4:
		return 1800
	case 5, 6:
		return 2000
	default:
		// 7, 8 residents and 9 foreigners carry no century; assume 1900.
		return 1900
	}
}

func birthDate(d []int) (time.Time, error) {
	year := century(d[0]) + d[1]*10 + d[2]
	month := d[3]*10 + d[4]
	day := d[5]*10 + d[6]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrDate, year, month, day)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrDate, year, month, day)
	}
	return t, nil
}
