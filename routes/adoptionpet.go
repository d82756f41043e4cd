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

// CreateAdoptionPet publishes a pet for adoption.
func CreateAdoptionPet(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateAdoptionPetInput
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

	pet := models.AdoptionPet{
		UserID:      claims.ID,
		PetName:     input.PetName,
		PetAge:      input.PetAge,
		Species:     input.Species,
		Description: input.Description,
		ImageURL:    imageURL,
		Vaccinated:  input.Vaccinated,
		Castrated:   input.Castrated,
		Address:     input.Address,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	}

	if err := storage.DB.Create(&pet).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "adoptionPet": pet})
}

func GetUserAdoptionPets(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var pets []models.AdoptionPet
	if err := storage.DB.Where("user_id = ?", claims.ID).Order("created_at DESC").Find(&pets).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "adoptionPets": pets})
}

func GetAdoptionPet(ctx iris.Context) {
	var pet models.AdoptionPet
	found := storage.DB.Preload("User").Where("id = ?", ctx.Params().Get("id")).Find(&pet)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "adoptionPet": pet})
}

func UpdateAdoptionPet(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	pet, ok := getOwnedAdoptionPet(ctx, claims.ID)
	if !ok {
		return
	}

	var input CreateAdoptionPetInput
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
	if imageURL != "" && imageURL != pet.ImageURL && pet.ImageURL != "" {
		storage.DeleteImage(pet.ImageURL)
	}
	if imageURL != "" {
		pet.ImageURL = imageURL
	}

	pet.PetName = input.PetName
	pet.PetAge = input.PetAge
	pet.Species = input.Species
	pet.Description = input.Description
	pet.Vaccinated = input.Vaccinated
	pet.Castrated = input.Castrated
	pet.Address = input.Address
	pet.Latitude = input.Latitude
	pet.Longitude = input.Longitude

	storage.DB.Save(pet)

	ctx.JSON(iris.Map{"success": true, "adoptionPet": pet})
}

// SetAdopted marks an adoption listing as adopted (or available
// again). Adopted listings drop out of explore results.
func SetAdopted(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	pet, ok := getOwnedAdoptionPet(ctx, claims.ID)
	if !ok {
		return
	}

	var input SetAdoptedInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	pet.Adopted = input.Adopted
	storage.DB.Save(pet)

	ctx.JSON(iris.Map{"success": true, "adoptionPet": pet})
}

func DeleteAdoptionPet(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	pet, ok := getOwnedAdoptionPet(ctx, claims.ID)
	if !ok {
		return
	}

	if pet.ImageURL != "" {
		storage.DeleteImage(pet.ImageURL)
	}

	storage.DB.Delete(pet)

	ctx.StatusCode(iris.StatusNoContent)
}

func ExploreAdoptionPets(ctx iris.Context) {
	params, ok := readExploreParams(ctx)
	if !ok {
		return
	}

	query := storage.DB.Preload("User").Where("adopted = ?", false)
	if params.Species != "" {
		query = query.Where("species = ?", params.Species)
	}

	var pets []models.AdoptionPet
	if err := query.Find(&pets).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	items := make([]distanced, 0, len(pets))
	for i := range pets {
		items = append(items, distanced{
			Item:        pets[i],
			DistanceKm:  services.ListingDistance(params.Lat, params.Lng, pets[i].Latitude, pets[i].Longitude),
			HasLocation: pets[i].Latitude != nil && pets[i].Longitude != nil,
		})
	}
	sortByDistance(items, params.Sort)

	ctx.JSON(iris.Map{"success": true, "adoptionPets": items})
}

func getOwnedAdoptionPet(ctx iris.Context, userID uint) (*models.AdoptionPet, bool) {
	id, convErr := strconv.ParseUint(ctx.Params().Get("id"), 10, 64)
	if convErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid id.", ctx)
		return nil, false
	}

	var pet models.AdoptionPet
	found := storage.DB.Where("id = ?", id).Find(&pet)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil, false
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil, false
	}
	if pet.UserID != userID {
		ctx.StatusCode(iris.StatusForbidden)
		return nil, false
	}
	return &pet, true
}

type CreateAdoptionPetInput struct {
	PetName     string   `json:"petName" validate:"required,max=256"`
	PetAge      *int     `json:"petAge"`
	Species     string   `json:"species" validate:"required"`
	Description string   `json:"description" validate:"max=2048"`
	Image       string   `json:"image"`
	Vaccinated  *bool    `json:"vaccinated"`
	Castrated   *bool    `json:"castrated"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type SetAdoptedInput struct {
	Adopted bool `json:"adopted"`
}
