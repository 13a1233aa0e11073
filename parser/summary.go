package parser

import "strings"

// violentKeywords mark an offense type as violent when any of them appears
// as a substring of the lowercased description. Everything else counts as a
// property crime.
var violentKeywords = []string{
	"murder", "sex", "rape", "assault", "robbery", "shooting", "carjacking",
}

// Summarize classifies each record by its offense type and counts the two
// buckets. Duplicate offense types are kept; the buckets mirror the record
// list, not a set of it.
func Summarize(records []Record) Summary {
	s := Summary{
		TotalOffenseTypes: len(records),
		ViolentCrimes:     []string{},
		PropertyCrimes:    []string{},
	}
	for _, rec := range records {
		offense, _ := rec[FieldOffenseType].(string)
		lower := strings.ToLower(offense)
		if isViolent(lower) {
			s.ViolentCrimes = append(s.ViolentCrimes, lower)
		} else {
			s.PropertyCrimes = append(s.PropertyCrimes, lower)
		}
	}
	s.ViolentCrimeCount = len(s.ViolentCrimes)
	s.PropertyCrimeCount = len(s.PropertyCrimes)
	return s
}

func isViolent(offense string) bool {
	for _, kw := range violentKeywords {
		if strings.Contains(offense, kw) {
			return true
		}
	}
	return false
}
