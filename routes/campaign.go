package routes

import (
	"sort"
	"strconv"

	"github.com/kataras/iris/v12"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

// CreateCampaign opens a fundraising campaign for the caller's ONG.
// Routes mounted under OngOnlyMiddleware carry the userID value.
func CreateCampaign(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	ong, ok := getOngByUserID(userID, ctx)
	if !ok {
		return
	}

	var input CampaignInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	campaign := models.Campaign{
		OngID:       ong.ID,
		Title:       input.Title,
		Description: input.Description,
		GoalAmount:  input.GoalAmount,
	}

	if err := storage.DB.Create(&campaign).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "campaign": campaign})
}

func GetOngCampaigns(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	ong, ok := getOngByUserID(userID, ctx)
	if !ok {
		return
	}

	var campaigns []models.Campaign
	if err := storage.DB.Where("ong_id = ?", ong.ID).Order("created_at DESC").Find(&campaigns).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "campaigns": campaigns})
}

func GetCampaign(ctx iris.Context) {
	var campaign models.Campaign
	found := storage.DB.Where("id = ?", ctx.Params().Get("id")).Find(&campaign)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "campaign": campaign})
}

func UpdateCampaign(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	campaign, ok := getOwnedCampaign(ctx, userID)
	if !ok {
		return
	}

	var input CampaignInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	campaign.Title = input.Title
	campaign.Description = input.Description
	campaign.GoalAmount = input.GoalAmount

	storage.DB.Save(campaign)

	ctx.JSON(iris.Map{"success": true, "campaign": campaign})
}

func DeleteCampaign(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	campaign, ok := getOwnedCampaign(ctx, userID)
	if !ok {
		return
	}

	storage.DB.Delete(campaign)

	ctx.StatusCode(iris.StatusNoContent)
}

// AlterRaisedAmount adds to or removes from a campaign's raised total.
// The total never goes below zero.
func AlterRaisedAmount(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	campaign, ok := getOwnedCampaign(ctx, userID)
	if !ok {
		return
	}

	var input AlterRaisedInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Op == "add" {
		campaign.RaisedAmount += input.Amount
	} else {
		campaign.RaisedAmount -= input.Amount
		if campaign.RaisedAmount < 0 {
			campaign.RaisedAmount = 0
		}
	}

	storage.DB.Save(campaign)

	ctx.JSON(iris.Map{"success": true, "campaign": campaign})
}

// ExploreCampaigns lists all campaigns, sorted by raised amount.
func ExploreCampaigns(ctx iris.Context) {
	sortBy := ctx.URLParamDefault("sort", "highest")
	if sortBy != "highest" && sortBy != "lowest" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "sort must be highest or lowest.", ctx)
		return
	}

	var campaigns []models.Campaign
	if err := storage.DB.Find(&campaigns).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	sort.SliceStable(campaigns, func(i, j int) bool {
		if sortBy == "lowest" {
			return campaigns[i].RaisedAmount < campaigns[j].RaisedAmount
		}
		return campaigns[i].RaisedAmount > campaigns[j].RaisedAmount
	})

	ctx.JSON(iris.Map{"success": true, "campaigns": campaigns})
}

func getOngByUserID(userID uint, ctx iris.Context) (*models.Ong, bool) {
	var ong models.Ong
	found := storage.DB.Where("user_id = ?", userID).Find(&ong)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil, false
	}
	if found.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "No ONG registered for this account.", ctx)
		return nil, false
	}
	return &ong, true
}

func getOwnedCampaign(ctx iris.Context, userID uint) (*models.Campaign, bool) {
	ong, ok := getOngByUserID(userID, ctx)
	if !ok {
		return nil, false
	}

	id, convErr := strconv.ParseUint(ctx.Params().Get("id"), 10, 64)
	if convErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid id.", ctx)
		return nil, false
	}

	var campaign models.Campaign
	found := storage.DB.Where("id = ?", id).Find(&campaign)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil, false
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil, false
	}
	if campaign.OngID != ong.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return nil, false
	}
	return &campaign, true
}

type CampaignInput struct {
	Title       string  `json:"title" validate:"required,max=256"`
	Description string  `json:"description" validate:"max=2048"`
	GoalAmount  float64 `json:"goalAmount" validate:"required,gt=0"`
}

type AlterRaisedInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Op     string  `json:"op" validate:"required,oneof=add remove"`
}
