package category

// Canonical categories.
const (
	Restaurants       Category = "restaurants"
	Bars              Category = "bars"
	Nightlife         Category = "nightlife"
	Cafes             Category = "cafes"
	Gyms              Category = "gyms"
	Parks             Category = "parks"
	GroceryStores     Category = "grocery_stores"
	Schools           Category = "schools"
	Universities      Category = "universities"
	Hospitals         Category = "hospitals"
	TransitStations   Category = "transit_stations"
	Pharmacies        Category = "pharmacies"
	Libraries         Category = "libraries"
	Museums           Category = "museums"
	ShoppingMalls     Category = "shopping_malls"
	MovieTheaters     Category = "movie_theaters"
	Police            Category = "police"
	FireStations      Category = "fire_stations"
	EmergencyServices Category = "emergency_services"
)

// placeTypes maps the categories served by Google Places to their place type.
var placeTypes = map[Category]string{
	Restaurants:     "restaurant",
	Bars:            "bar",
	Nightlife:       "night_club",
	Cafes:           "cafe",
	Gyms:            "gym",
	Parks:           "park",
	GroceryStores:   "grocery_store",
	Schools:         "school",
	Hospitals:       "hospital",
	TransitStations: "transit_station",
	Pharmacies:      "pharmacy",
	Libraries:       "library",
	Museums:         "museum",
	ShoppingMalls:   "shopping_mall",
	MovieTheaters:   "movie_theater",
}

// PlaceType returns the Google Places type for c.
func PlaceType(c Category) (string, bool) {
	t, ok := placeTypes[c]
	return t, ok
}

var schoolAliases = map[string]Category{
	"school":            Schools,
	"primary_school":    Schools,
	"elementary_school": Schools,
	"middle_school":     Schools,
	"high_school":       Schools,
	"secondary_school":  Schools,
	"kindergarten":      Schools,
}

// Places resolves text into the categories with a Google Places type.
var Places = NewTable(placeCategories(), merge(schoolAliases, map[string]Category{
	"restaurant":             Restaurants,
	"food":                   Restaurants,
	"bar":                    Bars,
	"night_club":             Nightlife,
	"night_clubs":            Nightlife,
	"nightclub":              Nightlife,
	"nightclubs":             Nightlife,
	"cafe":                   Cafes,
	"coffee":                 Cafes,
	"coffee_shop":            Cafes,
	"coffee_shops":           Cafes,
	"gym":                    Gyms,
	"fitness":                Gyms,
	"fitness_center":         Gyms,
	"park":                   Parks,
	"trail":                  Parks,
	"trails":                 Parks,
	"grocery":                GroceryStores,
	"grocery_store":          GroceryStores,
	"supermarket":            GroceryStores,
	"supermarkets":           GroceryStores,
	"grocery_or_supermarket": GroceryStores,
	"market":                 GroceryStores,
	"markets":                GroceryStores,
	"shopping":               GroceryStores,
	"hospital":               Hospitals,
	"medical_center":         Hospitals,
	"health":                 Hospitals,
	"transit":                TransitStations,
	"transit_station":        TransitStations,
	"train_station":          TransitStations,
	"bus_station":            TransitStations,
	"subway_station":         TransitStations,
	"pharmacy":               Pharmacies,
	"drugstore":              Pharmacies,
	"library":                Libraries,
	"museum":                 Museums,
	"art":                    Museums,
	"arts":                   Museums,
	"entertainment":          Museums,
	"shopping_mall":          ShoppingMalls,
	"mall":                   ShoppingMalls,
	"malls":                  ShoppingMalls,
	"movie_theater":          MovieTheaters,
	"cinema":                 MovieTheaters,
	"cinemas":                MovieTheaters,
}))

// OSM resolves text into the categories the Overpass engine can query. It
// covers everything in Places plus universities and emergency services.
var OSM = NewTable([]Category{
	Restaurants, Bars, Nightlife, Cafes, Gyms, Parks, GroceryStores, Schools,
	Universities, Hospitals, TransitStations, Pharmacies, Libraries, Museums,
	ShoppingMalls, MovieTheaters, Police, FireStations, EmergencyServices,
}, merge(schoolAliases, map[string]Category{
	"restaurant":      Restaurants,
	"bar":             Bars,
	"night_club":      Nightlife,
	"nightclub":       Nightlife,
	"cafe":            Cafes,
	"gym":             Gyms,
	"park":            Parks,
	"grocery":         GroceryStores,
	"supermarket":     GroceryStores,
	"hospital":        Hospitals,
	"transit_station": TransitStations,
	"pharmacy":        Pharmacies,
	"library":         Libraries,
	"museum":          Museums,
	"shopping_mall":   ShoppingMalls,
	"movie_theater":   MovieTheaters,
	"university":      Universities,
	"college":         Universities,
	"police_station":  Police,
	"fire_station":    FireStations,
	"emergency":       EmergencyServices,
}))

func placeCategories() []Category {
	out := make([]Category, 0, len(placeTypes))
	for c := range placeTypes {
		out = append(out, c)
	}
	return out
}

func merge(maps ...map[string]Category) map[string]Category {
	out := make(map[string]Category)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
