package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Elementary School", "elementary_school"},
		{"HIGH SCHOOL", "high_school"},
		{"  coffee -- shops!! ", "coffee_shops"},
		{"Arts & Entertainment", "arts_and_entertainment"},
		{"Café", "cafe"},
		{"Crème Brûlée", "creme_brulee"},
		{"___", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestPlaces_SchoolVariants(t *testing.T) {
	for _, in := range []string{"Elementary School", "primary_school", "HIGH SCHOOL", "schools", "Kindergarten"} {
		assert.Equal(t, Schools, Places.Resolve(in), in)
	}
}

func TestPlaces_Resolve(t *testing.T) {
	assert.Equal(t, Cafes, Places.Resolve("Coffee Shop"))
	assert.Equal(t, Cafes, Places.Resolve("Café"))
	assert.Equal(t, MovieTheaters, Places.Resolve("cinemas"))
	assert.Equal(t, Restaurants, Places.Resolve("Restaurants"))
	assert.Equal(t, Unrecognized, Places.Resolve("universities"))
	assert.Equal(t, Unrecognized, Places.Resolve("spaceports"))
	assert.False(t, Places.Resolve("spaceports").Known())
}

func TestPlaces_EveryCategoryHasType(t *testing.T) {
	assert.Len(t, Places.Supported(), 15)
	for _, c := range Places.Supported() {
		_, ok := PlaceType(Category(c))
		assert.True(t, ok, c)
	}
}

func TestOSM_Resolve(t *testing.T) {
	assert.Len(t, OSM.Supported(), 19)
	assert.Equal(t, Universities, OSM.Resolve("College"))
	assert.Equal(t, Police, OSM.Resolve("police station"))
	assert.Equal(t, EmergencyServices, OSM.Resolve("Emergency"))
	assert.Equal(t, Schools, OSM.Resolve("Middle School"))
	assert.Equal(t, Unrecognized, OSM.Resolve("coffee"))
}

func TestTable_Aliases(t *testing.T) {
	aliases := Places.Aliases(Cafes)
	assert.Equal(t, []string{"cafe", "cafes", "coffee", "coffee_shop", "coffee_shops"}, aliases)
	for _, a := range aliases {
		assert.Equal(t, Cafes, Places.Resolve(a))
	}
	assert.Empty(t, Places.Aliases(Unrecognized))
}

func TestTable_SupportedSorted(t *testing.T) {
	s := OSM.Supported()
	assert.IsNonDecreasing(t, s)
	assert.True(t, OSM.Has(Police))
	assert.False(t, Places.Has(Police))
}

func TestTable_Suggest(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"police dept", []string{"police"}},
		{"cafeteria", []string{"cafes"}},
		{"Hospital Wing", []string{"hospitals"}},
		{"zeppelin ports", nil},
		{"ba", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, OSM.Suggest(tt.raw))
		})
	}
}
