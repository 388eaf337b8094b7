package demographics

// ACS 5-year variables requested for every lookup.
const (
	varPopulation      = "B01003_001E"
	varMedianIncome    = "B19013_001E"
	varMedianAge       = "B01002_001E"
	varTenureTotal     = "B25003_001E"
	varOwnerOccupied   = "B25003_002E"
	varPovertyUniverse = "B17001_001E"
	varBelowPoverty    = "B17001_002E"
	varEducationTotal  = "B15003_001E"
	varBachelors       = "B15003_022E"
	varMasters         = "B15003_023E"
	varProfessional    = "B15003_024E"
	varDoctorate       = "B15003_025E"
	varMedianRent      = "B25064_001E"
	varCommuteTotal    = "B08303_001E"
)

// commuteBucket is a B08303 travel-time bucket and its midpoint in minutes.
type commuteBucket struct {
	variable string
	midpoint float64
}

var commuteBuckets = []commuteBucket{
	{"B08303_002E", 2.5},
	{"B08303_003E", 7},
	{"B08303_004E", 12},
	{"B08303_005E", 17},
	{"B08303_006E", 22},
	{"B08303_007E", 27},
	{"B08303_008E", 32},
	{"B08303_009E", 37},
	{"B08303_010E", 42},
	{"B08303_011E", 52},
	{"B08303_012E", 75},
	{"B08303_013E", 100},
}

// Variables returns the full get= list: 14 statistics then 12 commute buckets.
func Variables() []string {
	vars := []string{
		varPopulation, varMedianIncome, varMedianAge,
		varTenureTotal, varOwnerOccupied,
		varPovertyUniverse, varBelowPoverty,
		varEducationTotal, varBachelors, varMasters, varProfessional, varDoctorate,
		varMedianRent, varCommuteTotal,
	}
	for _, b := range commuteBuckets {
		vars = append(vars, b.variable)
	}
	return vars
}

// sentinels are ACS annotation values that stand for "no estimate".
var sentinels = map[float64]bool{
	-666666666: true,
	-999999999: true,
	-888888888: true,
	-555555555: true,
	-333333333: true,
	-222222222: true,
}
