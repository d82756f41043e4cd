package routes

import (
	"github.com/kataras/iris/v12"

	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

var uploadFolders = map[string]string{
	"pet-images":  storage.FolderPetImages,
	"chat-images": storage.FolderChatImages,
	"avatars":     storage.FolderAvatars,
}

// UploadImage stores a base64-encoded image and returns its URL.
func UploadImage(ctx iris.Context) {
	var input UploadImageInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	folder, ok := uploadFolders[input.Folder]
	if !ok {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown folder.", ctx)
		return
	}

	url, uploadErr := storage.UploadBase64Image(input.Data, folder)
	if uploadErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "url": url})
}

type UploadImageInput struct {
	Data   string `json:"data" validate:"required"`
	Folder string `json:"folder" validate:"required"`
}
