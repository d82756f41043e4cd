package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/kataras/iris/v12"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/storage"
)

func buildExploreTestApp(t *testing.T) *iris.Application {
	t.Helper()

	app := iris.New()
	report := app.Party("/api/report")
	{
		report.Get("/explore", ExploreReports)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build test app: %v", err)
	}
	return app
}

func floatPtr(v float64) *float64 { return &v }

func createTestReport(t *testing.T, userID uint, species string, lat, lng *float64) *models.Report {
	t.Helper()

	report := models.Report{
		UserID:    userID,
		Species:   species,
		Latitude:  lat,
		Longitude: lng,
	}
	if err := storage.DB.Create(&report).Error; err != nil {
		t.Fatalf("failed to create test report: %v", err)
	}
	return &report
}

type exploreResponse struct {
	Reports []struct {
		Item struct {
			ID      uint   `json:"ID"`
			Species string `json:"species"`
		} `json:"item"`
		DistanceKm  float64 `json:"distanceKm"`
		HasLocation bool    `json:"hasLocation"`
	} `json:"reports"`
}

func exploreReports(t *testing.T, app *iris.Application, query string) exploreResponse {
	t.Helper()

	resp := doJSON(app, http.MethodGet, "/api/report/explore?"+query, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from explore, got %d: %s", resp.Code, resp.Body.String())
	}

	var out exploreResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode explore response: %v", err)
	}
	return out
}

func TestExploreSortsByDistance(t *testing.T) {
	setupTestDB(t)
	app := buildExploreTestApp(t)

	owner := createTestUser(t, "Alice")

	// roughly 5km, 0km and 2km north of the reference point
	far := createTestReport(t, owner.ID, "Gato", floatPtr(0.045), floatPtr(0))
	here := createTestReport(t, owner.ID, "Cachorro", floatPtr(0), floatPtr(0))
	near := createTestReport(t, owner.ID, "Cachorro", floatPtr(0.018), floatPtr(0))

	out := exploreReports(t, app, "lat=0&lng=0")
	if len(out.Reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(out.Reports))
	}

	wantOrder := []uint{here.ID, near.ID, far.ID}
	for i, want := range wantOrder {
		if out.Reports[i].Item.ID != want {
			t.Fatalf("nearest order wrong at %d: want report %d, got %d", i, want, out.Reports[i].Item.ID)
		}
	}
	for i := 1; i < len(out.Reports); i++ {
		if out.Reports[i].DistanceKm < out.Reports[i-1].DistanceKm {
			t.Fatalf("distances not ascending: %f after %f", out.Reports[i].DistanceKm, out.Reports[i-1].DistanceKm)
		}
	}

	reversed := exploreReports(t, app, "lat=0&lng=0&sort=farthest")
	if reversed.Reports[0].Item.ID != far.ID {
		t.Fatalf("farthest order wrong: want report %d first, got %d", far.ID, reversed.Reports[0].Item.ID)
	}
}

func TestExploreListingsWithoutLocationSortFirst(t *testing.T) {
	setupTestDB(t)
	app := buildExploreTestApp(t)

	owner := createTestUser(t, "Alice")

	located := createTestReport(t, owner.ID, "Gato", floatPtr(0.018), floatPtr(0))
	unlocated := createTestReport(t, owner.ID, "Gato", nil, nil)

	out := exploreReports(t, app, "lat=0&lng=0")
	if len(out.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(out.Reports))
	}

	first := out.Reports[0]
	if first.Item.ID != unlocated.ID {
		t.Fatalf("expected unlocated report first, got %d", first.Item.ID)
	}
	if first.DistanceKm != 0 || first.HasLocation {
		t.Fatalf("expected zero distance and hasLocation=false, got %f/%v", first.DistanceKm, first.HasLocation)
	}
	if out.Reports[1].Item.ID != located.ID {
		t.Fatalf("expected located report second, got %d", out.Reports[1].Item.ID)
	}
}

func TestExploreFiltersBySpecies(t *testing.T) {
	setupTestDB(t)
	app := buildExploreTestApp(t)

	owner := createTestUser(t, "Alice")

	createTestReport(t, owner.ID, "Gato", floatPtr(0), floatPtr(0))
	createTestReport(t, owner.ID, "Cachorro", floatPtr(0), floatPtr(0))

	out := exploreReports(t, app, "lat=0&lng=0&species=Gato")
	if len(out.Reports) != 1 {
		t.Fatalf("expected 1 report for species filter, got %d", len(out.Reports))
	}
	if out.Reports[0].Item.Species != "Gato" {
		t.Fatalf("expected Gato, got %s", out.Reports[0].Item.Species)
	}
}

func TestExploreRejectsBadParams(t *testing.T) {
	setupTestDB(t)
	app := buildExploreTestApp(t)

	cases := []string{
		"",
		"lat=0",
		fmt.Sprintf("lat=0&lng=0&species=%s", "Dinossauro"),
		"lat=0&lng=0&sort=sideways",
	}
	for _, query := range cases {
		resp := doJSON(app, http.MethodGet, "/api/report/explore?"+query, "", nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for query %q, got %d", query, resp.Code)
		}
	}
}
