package routes

import (
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/services"
	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

// CreateReport registers a sighting of a stray animal.
func CreateReport(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateReportInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !models.IsValidSpecies(input.Species) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown species.", ctx)
		return
	}

	imageURL, uploadErr := resolveImage(input.Image, storage.FolderPetImages)
	if uploadErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	report := models.Report{
		UserID:       claims.ID,
		Species:      input.Species,
		Description:  input.Description,
		ImageURL:     imageURL,
		LocationName: input.LocationName,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
	}

	if err := storage.DB.Create(&report).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "report": report})
}

func GetUserReports(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var reports []models.Report
	if err := storage.DB.Where("user_id = ?", claims.ID).Order("created_at DESC").Find(&reports).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "reports": reports})
}

func GetReport(ctx iris.Context) {
	var report models.Report
	found := storage.DB.Preload("User").Where("id = ?", ctx.Params().Get("id")).Find(&report)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "report": report})
}

func UpdateReport(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	report, ok := getOwnedReport(ctx, claims.ID)
	if !ok {
		return
	}

	var input CreateReportInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !models.IsValidSpecies(input.Species) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown species.", ctx)
		return
	}

	imageURL, uploadErr := resolveImage(input.Image, storage.FolderPetImages)
	if uploadErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if imageURL != "" && imageURL != report.ImageURL && report.ImageURL != "" {
		storage.DeleteImage(report.ImageURL)
	}
	if imageURL != "" {
		report.ImageURL = imageURL
	}

	report.Species = input.Species
	report.Description = input.Description
	report.LocationName = input.LocationName
	report.Latitude = input.Latitude
	report.Longitude = input.Longitude

	storage.DB.Save(report)

	ctx.JSON(iris.Map{"success": true, "report": report})
}

func DeleteReport(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	report, ok := getOwnedReport(ctx, claims.ID)
	if !ok {
		return
	}

	if report.ImageURL != "" {
		storage.DeleteImage(report.ImageURL)
	}

	storage.DB.Delete(report)

	ctx.StatusCode(iris.StatusNoContent)
}

// ExploreReports lists reports around a reference point, sorted by
// distance.
func ExploreReports(ctx iris.Context) {
	params, ok := readExploreParams(ctx)
	if !ok {
		return
	}

	query := storage.DB.Preload("User")
	if params.Species != "" {
		query = query.Where("species = ?", params.Species)
	}

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	items := make([]distanced, 0, len(reports))
	for i := range reports {
		items = append(items, distanced{
			Item:        reports[i],
			DistanceKm:  services.ListingDistance(params.Lat, params.Lng, reports[i].Latitude, reports[i].Longitude),
			HasLocation: reports[i].Latitude != nil && reports[i].Longitude != nil,
		})
	}
	sortByDistance(items, params.Sort)

	ctx.JSON(iris.Map{"success": true, "reports": items})
}

func getOwnedReport(ctx iris.Context, userID uint) (*models.Report, bool) {
	id, convErr := strconv.ParseUint(ctx.Params().Get("id"), 10, 64)
	if convErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid id.", ctx)
		return nil, false
	}

	var report models.Report
	found := storage.DB.Where("id = ?", id).Find(&report)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil, false
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil, false
	}
	if report.UserID != userID {
		ctx.StatusCode(iris.StatusForbidden)
		return nil, false
	}
	return &report, true
}

// resolveImage uploads raw base64 image data and passes stored URLs
// through untouched.
func resolveImage(image, folder string) (string, error) {
	if image == "" || storage.IsCloudinaryURL(image) {
		return image, nil
	}
	return storage.UploadBase64Image(image, folder)
}

type CreateReportInput struct {
	Species      string   `json:"species" validate:"required"`
	Description  string   `json:"description" validate:"max=2048"`
	Image        string   `json:"image"`
	LocationName string   `json:"locationName"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}
