package parser

import (
	"reflect"
	"testing"
)

func TestSummarize(t *testing.T) {
	records := []Record{
		{FieldOffenseType: "Armed Robbery"},
		{FieldOffenseType: "Theft From Auto"},
		{FieldOffenseType: "ASSAULT"},
		{FieldOffenseType: "Residential Burglary"},
		{FieldOffenseType: "Carjacking"},
	}

	s := Summarize(records)

	if s.TotalOffenseTypes != 5 {
		t.Errorf("TotalOffenseTypes = %d, want 5", s.TotalOffenseTypes)
	}
	wantViolent := []string{"armed robbery", "assault", "carjacking"}
	if !reflect.DeepEqual(s.ViolentCrimes, wantViolent) {
		t.Errorf("ViolentCrimes = %v, want %v", s.ViolentCrimes, wantViolent)
	}
	wantProperty := []string{"theft from auto", "residential burglary"}
	if !reflect.DeepEqual(s.PropertyCrimes, wantProperty) {
		t.Errorf("PropertyCrimes = %v, want %v", s.PropertyCrimes, wantProperty)
	}
	if s.ViolentCrimeCount != 3 || s.PropertyCrimeCount != 2 {
		t.Errorf("counts = %d/%d, want 3/2", s.ViolentCrimeCount, s.PropertyCrimeCount)
	}
}

func TestSummarizeKeepsDuplicates(t *testing.T) {
	records := []Record{
		{FieldOffenseType: "Robbery"},
		{FieldOffenseType: "Robbery"},
	}
	s := Summarize(records)
	if s.ViolentCrimeCount != 2 {
		t.Errorf("ViolentCrimeCount = %d, want 2", s.ViolentCrimeCount)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.ViolentCrimes == nil || s.PropertyCrimes == nil {
		t.Error("buckets must be empty slices, not nil")
	}
	if s.TotalOffenseTypes != 0 {
		t.Errorf("TotalOffenseTypes = %d, want 0", s.TotalOffenseTypes)
	}
}
