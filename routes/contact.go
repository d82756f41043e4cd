package routes

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

// GetContact returns the caller's contact card, if any.
func GetContact(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var contact models.UserContact
	found := storage.DB.Where("user_id = ?", claims.ID).Find(&contact)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "contact": contact})
}

// CreateContact creates the caller's contact card. Each user has at
// most one.
func CreateContact(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input ContactInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.UserContact
	found := storage.DB.Where("user_id = ?", claims.ID).Find(&existing)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "Contact already exists; use PUT to update it.", ctx)
		return
	}

	contact := models.UserContact{
		UserID: claims.ID,
		Name:   input.Name,
		Phone:  input.Phone,
	}

	if err := storage.DB.Create(&contact).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "contact": contact})
}

func UpdateContact(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input ContactInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var contact models.UserContact
	found := storage.DB.Where("user_id = ?", claims.ID).Find(&contact)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	contact.Name = input.Name
	contact.Phone = input.Phone
	storage.DB.Save(&contact)

	ctx.JSON(iris.Map{"success": true, "contact": contact})
}

func DeleteContact(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var contact models.UserContact
	found := storage.DB.Where("user_id = ?", claims.ID).Find(&contact)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	storage.DB.Delete(&contact)

	ctx.StatusCode(iris.StatusNoContent)
}

type ContactInput struct {
	Name  string `json:"name" validate:"required,max=256"`
	Phone string `json:"phone" validate:"required,max=20"`
}
