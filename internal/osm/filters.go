package osm

import (
	"github.com/sells-group/liveable/internal/category"
	"github.com/sells-group/liveable/pkg/overpass"
)

func tag(k, v string) overpass.Filter { return overpass.Filter{Key: k, Value: v} }

// categoryFilters maps each OSM category to the tags that identify it.
var categoryFilters = map[category.Category][]overpass.Filter{
	category.Restaurants:       {tag("amenity", "restaurant")},
	category.Bars:              {tag("amenity", "bar")},
	category.Nightlife:         {tag("amenity", "nightclub"), tag("amenity", "pub")},
	category.Cafes:             {tag("amenity", "cafe")},
	category.Gyms:              {tag("leisure", "fitness_centre")},
	category.Parks:             {tag("leisure", "park")},
	category.GroceryStores:     {tag("shop", "supermarket"), tag("shop", "convenience"), tag("shop", "grocery")},
	category.Schools:           {tag("amenity", "school")},
	category.Universities:      {tag("amenity", "university"), tag("amenity", "college")},
	category.Hospitals:         {tag("amenity", "hospital")},
	category.TransitStations:   {tag("railway", "station"), tag("public_transport", "station"), tag("amenity", "bus_station")},
	category.Pharmacies:        {tag("amenity", "pharmacy")},
	category.Libraries:         {tag("amenity", "library")},
	category.Museums:           {tag("tourism", "museum")},
	category.ShoppingMalls:     {tag("shop", "mall")},
	category.MovieTheaters:     {tag("amenity", "cinema")},
	category.Police:            {tag("amenity", "police")},
	category.FireStations:      {tag("amenity", "fire_station")},
	category.EmergencyServices: {tag("amenity", "police"), tag("amenity", "fire_station"), tag("amenity", "hospital")},
}

// countOnly categories are expensive or sensitive; they only get an
// "out count" query within MaxCountRadius.
var countOnly = map[category.Category]bool{
	category.Police:            true,
	category.FireStations:      true,
	category.Hospitals:         true,
	category.EmergencyServices: true,
}

// Filters returns the tag filters for c.
func Filters(c category.Category) ([]overpass.Filter, bool) {
	f, ok := categoryFilters[c]
	return f, ok
}

// CountOnly reports whether c is restricted to count queries.
func CountOnly(c category.Category) bool { return countOnly[c] }
