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

// CreateLostPet publishes a lost pet listing.
func CreateLostPet(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateLostPetInput
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

	lostPet := models.LostPet{
		UserID:       claims.ID,
		Name:         input.Name,
		Species:      input.Species,
		Description:  input.Description,
		Reward:       input.Reward,
		ImageURL:     imageURL,
		LastSeenName: input.LastSeenName,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
	}

	if err := storage.DB.Create(&lostPet).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "lostPet": lostPet})
}

func GetUserLostPets(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var lostPets []models.LostPet
	if err := storage.DB.Where("user_id = ?", claims.ID).Order("created_at DESC").Find(&lostPets).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "lostPets": lostPets})
}

func GetLostPet(ctx iris.Context) {
	var lostPet models.LostPet
	found := storage.DB.Preload("User").Where("id = ?", ctx.Params().Get("id")).Find(&lostPet)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "lostPet": lostPet})
}

func UpdateLostPet(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	lostPet, ok := getOwnedLostPet(ctx, claims.ID)
	if !ok {
		return
	}

	var input CreateLostPetInput
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
	if imageURL != "" && imageURL != lostPet.ImageURL && lostPet.ImageURL != "" {
		storage.DeleteImage(lostPet.ImageURL)
	}
	if imageURL != "" {
		lostPet.ImageURL = imageURL
	}

	lostPet.Name = input.Name
	lostPet.Species = input.Species
	lostPet.Description = input.Description
	lostPet.Reward = input.Reward
	lostPet.LastSeenName = input.LastSeenName
	lostPet.Latitude = input.Latitude
	lostPet.Longitude = input.Longitude

	storage.DB.Save(lostPet)

	ctx.JSON(iris.Map{"success": true, "lostPet": lostPet})
}

func DeleteLostPet(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	lostPet, ok := getOwnedLostPet(ctx, claims.ID)
	if !ok {
		return
	}

	if lostPet.ImageURL != "" {
		storage.DeleteImage(lostPet.ImageURL)
	}

	storage.DB.Delete(lostPet)

	ctx.StatusCode(iris.StatusNoContent)
}

func ExploreLostPets(ctx iris.Context) {
	params, ok := readExploreParams(ctx)
	if !ok {
		return
	}

	query := storage.DB.Preload("User")
	if params.Species != "" {
		query = query.Where("species = ?", params.Species)
	}

	var lostPets []models.LostPet
	if err := query.Find(&lostPets).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	items := make([]distanced, 0, len(lostPets))
	for i := range lostPets {
		items = append(items, distanced{
			Item:        lostPets[i],
			DistanceKm:  services.ListingDistance(params.Lat, params.Lng, lostPets[i].Latitude, lostPets[i].Longitude),
			HasLocation: lostPets[i].Latitude != nil && lostPets[i].Longitude != nil,
		})
	}
	sortByDistance(items, params.Sort)

	ctx.JSON(iris.Map{"success": true, "lostPets": items})
}

func getOwnedLostPet(ctx iris.Context, userID uint) (*models.LostPet, bool) {
	id, convErr := strconv.ParseUint(ctx.Params().Get("id"), 10, 64)
	if convErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid id.", ctx)
		return nil, false
	}

	var lostPet models.LostPet
	found := storage.DB.Where("id = ?", id).Find(&lostPet)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil, false
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil, false
	}
	if lostPet.UserID != userID {
		ctx.StatusCode(iris.StatusForbidden)
		return nil, false
	}
	return &lostPet, true
}

type CreateLostPetInput struct {
	Name         string   `json:"name" validate:"required,max=256"`
	Species      string   `json:"species" validate:"required"`
	Description  string   `json:"description" validate:"max=2048"`
	Reward       *float64 `json:"reward"`
	Image        string   `json:"image"`
	LastSeenName string   `json:"lastSeenName"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}
