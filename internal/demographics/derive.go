package demographics

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/liveable/internal/model"
)

// Derive turns one ACS row (keyed by variable) into a DemographicsRecord.
// Sentinels and unparsable values become nil before any arithmetic, and a
// derived figure is nil whenever one of its operands is.
func Derive(zip string, row map[string]any) model.DemographicsRecord {
	v := func(key string) *float64 { return value(row[key]) }

	rec := model.DemographicsRecord{
		ZipCode:               zip,
		Population:            toInt(v(varPopulation)),
		MedianHouseholdIncome: toInt(v(varMedianIncome)),
		MedianAge:             v(varMedianAge),
		MedianRent:            toInt(v(varMedianRent)),
	}

	rec.PctOwnerOccupied = percent(v(varOwnerOccupied), v(varTenureTotal))
	rec.PovertyRate = percent(v(varBelowPoverty), v(varPovertyUniverse))
	rec.PctCollegeEducated = percent(
		sum(v(varBachelors), v(varMasters), v(varProfessional), v(varDoctorate)),
		v(varEducationTotal),
	)

	counts := make([]*float64, len(commuteBuckets))
	for i, b := range commuteBuckets {
		counts[i] = v(b.variable)
	}
	rec.CommuteTimeAvg = CommuteAverage(counts)
	return rec
}

// CommuteAverage is the count-weighted mean of the bucket midpoints. counts
// must be in bucket order.
func CommuteAverage(counts []*float64) *float64 {
	if len(counts) != len(commuteBuckets) {
		return nil
	}
	var weighted, total float64
	for i, c := range counts {
		if c == nil {
			return nil
		}
		weighted += *c * commuteBuckets[i].midpoint
		total += *c
	}
	return ratio(weighted, total)
}

// value parses an ACS cell, which arrives as a string, a number or null.
func value(raw any) *float64 {
	var f float64
	switch t := raw.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || sentinels[f] {
		return nil
	}
	return &f
}

func toInt(f *float64) *int64 {
	if f == nil {
		return nil
	}
	n := int64(math.Round(*f))
	return &n
}

func sum(vals ...*float64) *float64 {
	var s float64
	for _, v := range vals {
		if v == nil {
			return nil
		}
		s += *v
	}
	return &s
}

func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	r := num / den
	return &r
}

// percent is part/whole×100, nil on a missing operand, a zero whole, or a
// result outside [0,100].
func percent(part, whole *float64) *float64 {
	if part == nil || whole == nil {
		return nil
	}
	r := ratio(*part, *whole)
	if r == nil {
		return nil
	}
	p := *r * 100
	if p < 0 || p > 100 {
		return nil
	}
	return &p
}
