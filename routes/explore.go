package routes

import (
	"sort"

	"github.com/kataras/iris/v12"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/utils"
)

// exploreParams are the common query params of the discovery
// endpoints. Species is optional; sort defaults to nearest.
type exploreParams struct {
	Lat     float64
	Lng     float64
	Species string
	Sort    string
}

func readExploreParams(ctx iris.Context) (*exploreParams, bool) {
	lat, latErr := ctx.URLParamFloat64("lat")
	lng, lngErr := ctx.URLParamFloat64("lng")
	if latErr != nil || lngErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "lat and lng query params are required.", ctx)
		return nil, false
	}

	species := ctx.URLParamDefault("species", "")
	if species != "" && !models.IsValidSpecies(species) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown species.", ctx)
		return nil, false
	}

	sortBy := ctx.URLParamDefault("sort", "nearest")
	if sortBy != "nearest" && sortBy != "farthest" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "sort must be nearest or farthest.", ctx)
		return nil, false
	}

	return &exploreParams{Lat: lat, Lng: lng, Species: species, Sort: sortBy}, true
}

// distanced pairs a listing with its distance from the reference
// point. Listings with no coordinates report zero distance, so they
// sort first under nearest.
type distanced struct {
	Item        interface{} `json:"item"`
	DistanceKm  float64     `json:"distanceKm"`
	HasLocation bool        `json:"hasLocation"`
}

func sortByDistance(items []distanced, order string) {
	sort.SliceStable(items, func(i, j int) bool {
		if order == "farthest" {
			return items[i].DistanceKm > items[j].DistanceKm
		}
		return items[i].DistanceKm < items[j].DistanceKm
	})
}
