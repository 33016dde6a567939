package programs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// unitCodes maps unit identifiers to the short code used in program codes.
// Unmapped units fall back to the generic GEN namespace.
var unitCodes = map[string]string{
	"irban1":      "IRBAN1",
	"irban2":      "IRBAN2",
	"irban3":      "IRBAN3",
	"irbansus":    "IRBANSUS",
	"sekretariat": "SEKRET",
}

const genericUnitCode = "GEN"

// NormalizeUnit canonicalizes a unit identifier to its kebab-case form so
// filters and stored values compare equal regardless of input casing.
func NormalizeUnit(unit string) string {
	if strings.TrimSpace(unit) == "" {
		return ""
	}
	return slug.Make(unit)
}

func unitCode(unit string) string {
	if code, ok := unitCodes[unit]; ok {
		return code
	}
	return genericUnitCode
}

// CodePrefix returns the program-code prefix for a unit, e.g. "PKPT-IRBAN1-".
func CodePrefix(unit string) string {
	return "PKPT-" + unitCode(unit) + "-"
}

// NextCode computes the next sequential program code for the unit's
// namespace. It must run inside the same transaction as the insert that uses
// the code; callers retry on a duplicate-code conflict, which closes the race
// between two concurrent creations computing the same sequence number.
func NextCode(tx *gorm.DB, unit string) (string, error) {
	prefix := CodePrefix(unit)

	// Lexicographic max is the numeric max while suffixes stay zero-padded
	// to a fixed width.
	var last ProgramModel
	err := tx.Where("code LIKE ?", prefix+"%").Order("code DESC").First(&last).Error

	sequence := 1
	if err == nil {
		sequence = suffixNumber(last.Code) + 1
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	return fmt.Sprintf("%s%03d", prefix, sequence), nil
}

// suffixNumber parses the numeric suffix after the final dash; 0 when absent
// or unparseable.
func suffixNumber(code string) int {
	idx := strings.LastIndex(code, "-")
	if idx < 0 || idx == len(code)-1 {
		return 0
	}
	n, err := strconv.Atoi(code[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
