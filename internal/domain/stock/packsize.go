package stock

import (
	"errors"
	"math"
	"strconv"
)

var (
	ErrInvalidPackSize   = errors.New("pack size contains a zero factor")
	ErrPackSizeOverflow  = errors.New("pack size is too large")
	ErrQuantityOverflow  = errors.New("quantity in base units is too large")
	ErrNegativeQuantity  = errors.New("quantity must not be negative")
	ErrPinnedNonPositive = errors.New("a pinned lot requires a positive quantity")
)

// ParsePackSize returns the number of base units in one pack.
// Every run of digits is a factor: "6x10" is 60, "10" is 10, "" or "bottle" is 1.
func ParsePackSize(s string) (int64, error) {
	units := int64(1)
	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		n, err := strconv.ParseInt(s[i:j], 10, 64)
		if err != nil {
			return 0, ErrPackSizeOverflow
		}
		if n == 0 {
			return 0, ErrInvalidPackSize
		}
		if units > math.MaxInt64/n {
			return 0, ErrPackSizeOverflow
		}
		units *= n
		i = j
	}
	return units, nil
}

// BaseUnits converts a pack count into base units.
func BaseUnits(packs int64, packSize string) (int64, error) {
	if packs < 0 {
		return 0, ErrNegativeQuantity
	}
	per, err := ParsePackSize(packSize)
	if err != nil {
		return 0, err
	}
	if packs > 0 && per > math.MaxInt64/packs {
		return 0, ErrQuantityOverflow
	}
	return packs * per, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
