package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slices"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	isOng := userInput.Type == "ong"

	cpf := ""
	if !isOng {
		cpf = utils.NormalizeDocument(userInput.CPF)
		if !utils.ValidateCPF(cpf) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid CPF.", ctx)
			return
		}
	}

	if isOng {
		if userInput.Ong == nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "ONG data is required for ONG accounts.", ctx)
			return
		}
		if !utils.ValidateCNPJ(userInput.Ong.CNPJ) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid CNPJ.", ctx)
			return
		}
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		BirthDate:   userInput.BirthDate,
		CPF:         cpf,
		IsOng:       isOng,
		SocialLogin: false}

	storage.DB.Create(&newUser)

	if isOng {
		ong := models.Ong{
			UserID:      newUser.ID,
			Name:        userInput.Ong.Name,
			Description: userInput.Ong.Description,
			CNPJ:        utils.NormalizeDocument(userInput.Ong.CNPJ),
		}
		if err := storage.DB.Create(&ong).Error; err != nil {
			// keep the account usable; the ONG row can be completed later
			fmt.Println("failed to create ONG record:", err)
		}
	}

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if existingUser.SocialLogin {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Social Login Account", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

func GoogleLoginOrSignUp(ctx iris.Context) {
	var userInput SocialLoginInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	endpoint := "https://www.googleapis.com/userinfo/v2/me"

	client := &http.Client{}
	req, _ := http.NewRequest("GET", endpoint, nil)
	req.Header.Set("Authorization", "Bearer "+userInput.AccessToken)
	res, googleErr := client.Do(req)
	if googleErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	defer res.Body.Close()
	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var googleBody GoogleUserRes
	json.Unmarshal(body, &googleBody)

	if googleBody.Email != "" {
		var user models.User
		userExists, userExistsErr := getAndHandleUserExists(&user, googleBody.Email)

		if userExistsErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		if !userExists {
			user = models.User{FirstName: googleBody.GivenName, LastName: googleBody.FamilyName, Email: googleBody.Email, SocialLogin: true, SocialProvider: "Google"}
			storage.DB.Create(&user)

			returnUser(user, ctx)
			return
		}

		if user.SocialLogin && user.SocialProvider == "Google" {
			returnUser(user, ctx)
			return
		}

		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}
}

func AppleLoginOrSignUp(ctx iris.Context) {
	var userInput AppleUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, httpErr := http.Get("https://appleid.apple.com/auth/keys")
	if httpErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	defer res.Body.Close()

	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	jwks, jwksErr := keyfunc.NewJSON(body)
	if jwksErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// keyfunc selects the JWKS key matching the token's kid
	token, tokenErr := jwt.Parse(userInput.IdentityToken, jwks.Keyfunc)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !token.Valid {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	email := fmt.Sprint(token.Claims.(jwt.MapClaims)["email"])
	if email != "" {
		var user models.User
		userExists, userExistsErr := getAndHandleUserExists(&user, email)

		if userExistsErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}

		if !userExists {
			user = models.User{Email: email, SocialLogin: true, SocialProvider: "Apple"}
			storage.DB.Create(&user)

			returnUser(user, ctx)
			return
		}

		if user.SocialLogin && user.SocialProvider == "Apple" {
			returnUser(user, ctx)
			return
		}

		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}
}

func ForgotPassword(ctx iris.Context) {
	var emailInput EmailRegisteredInput
	err := ctx.ReadJSON(&emailInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, emailInput.Email)

	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid email.", ctx)
		return
	}

	if user.SocialLogin {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Social Login Account", ctx)
		return
	}

	token, tokenErr := utils.CreateForgotPasswordToken(user.ID, user.Email)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	link := "petfound://resetpassword/" + token
	subject := "Esqueceu sua senha?"

	html := `
	<p>Parece que você esqueceu sua senha. Se foi você, clique no link
	abaixo para redefini-la. Caso contrário, ignore este email. O link
	expira em 10 minutos. <a href=` + link + `>Redefinir senha</a>
	</p><br />`

	emailSent, emailSentErr := utils.SendMail(user.Email, subject, html)
	if emailSentErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"emailSent": emailSent})
}

func ResetPassword(ctx iris.Context) {
	var password ResetPasswordInput
	err := ctx.ReadJSON(&password)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(password.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	claims := jsonWT.Get(ctx).(*utils.ForgotPasswordToken)

	var user models.User
	storage.DB.Model(&user).Where("id = ?", claims.ID).Update("password", hashedPassword)

	ctx.JSON(iris.Map{
		"passwordReset": true,
	})
}

// SearchUsers allows searching users by name or email (auth required),
// used when starting a conversation.
func SearchUsers(ctx iris.Context) {
	q := ctx.URLParamDefault("q", "")
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if perPage <= 0 || perPage > 50 {
		perPage = 20
	}
	if len(q) < 1 {
		utils.JSONPage(ctx, []interface{}{}, page, perPage, 0)
		return
	}

	search := "%" + q + "%"
	filter := storage.DB.Model(&models.User{}).
		Where("lower(first_name) LIKE lower(?) OR lower(last_name) LIKE lower(?) OR lower(email) LIKE lower(?)", search, search, search)

	var total int64
	filter.Count(&total)

	var users []models.User
	filter.
		Select("id, first_name, last_name, avatar_url, is_ong").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users)

	utils.JSONPage(ctx, users, page, perPage, total)
}

// GetUser returns the public display info for a user.
func GetUser(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	ctx.JSON(iris.Map{
		"ID":        user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"avatarURL": user.AvatarURL,
		"isOng":     user.IsOng,
	})
}

func AlterPushToken(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var req AlterPushTokenInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var unMarshalledTokens []string
	var pushTokens []string

	if user.PushTokens != nil {
		unmarshalErr := json.Unmarshal(user.PushTokens, &unMarshalledTokens)

		if unmarshalErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	if req.Op == "add" {
		if !slices.Contains(unMarshalledTokens, req.Token) {
			pushTokens = append(unMarshalledTokens, req.Token)
		} else {
			pushTokens = unMarshalledTokens
		}
	} else if req.Op == "remove" && len(unMarshalledTokens) > 0 {
		for _, token := range unMarshalledTokens {
			if req.Token != token {
				pushTokens = append(pushTokens, token)
			}
		}
	}

	marshalledTokens, marshalErr := json.Marshal(pushTokens)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	user.PushTokens = marshalledTokens
	storage.DB.Save(user)

	ctx.StatusCode(iris.StatusNoContent)
}

func AllowsNotifications(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	var req AllowsNotificationsInput
	err := ctx.ReadJSON(&req)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	user.AllowsNotifications = req.AllowsNotifications
	storage.DB.Save(user)

	ctx.StatusCode(iris.StatusNoContent)
}

func UpdateUserProfile(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	user := getUserByID(id, ctx)
	if user == nil {
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	if user.ID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var input UpdateProfileInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Raw base64 avatars get uploaded; URLs pass through
	avatarURL := input.AvatarURL
	if avatarURL != "" && !storage.IsCloudinaryURL(avatarURL) {
		uploaded, uploadErr := storage.UploadBase64Image(avatarURL, storage.FolderAvatars)
		if uploadErr != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		avatarURL = uploaded
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.AvatarURL = avatarURL
	user.BirthDate = input.BirthDate

	storage.DB.Save(user)

	ctx.JSON(iris.Map{
		"success": true,
		"user":    user,
		"cpf":     utils.DisplayCPF(user.CPF),
	})
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func getUserByID(id string, ctx iris.Context) *models.User {
	var user models.User
	userExists := storage.DB.Where("id = ?", id).Find(&user)

	if userExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}

	if userExists.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found", ctx)
		return nil
	}

	return &user
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"ID":                  user.ID,
		"firstName":           user.FirstName,
		"lastName":            user.LastName,
		"email":               user.Email,
		"avatarURL":           user.AvatarURL,
		"isOng":               user.IsOng,
		"allowsNotifications": user.AllowsNotifications,
		"accessToken":         string(tokenPair.AccessToken),
		"refreshToken":        string(tokenPair.RefreshToken),
	})
}

type RegisterUserInput struct {
	FirstName string            `json:"firstName" validate:"required,max=256"`
	LastName  string            `json:"lastName" validate:"required,max=256"`
	Email     string            `json:"email" validate:"required,max=256,email"`
	Password  string            `json:"password" validate:"required,min=8,max=256"`
	Type      string            `json:"type" validate:"required,oneof=user ong"`
	CPF       string            `json:"cpf"`
	BirthDate string            `json:"birthDate"`
	Ong       *RegisterOngInput `json:"ong"`
}

type RegisterOngInput struct {
	Name        string `json:"name" validate:"required,max=256"`
	Description string `json:"description" validate:"max=2048"`
	CNPJ        string `json:"cnpj" validate:"required"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SocialLoginInput struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

type AppleUserInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

type GoogleUserRes struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

type EmailRegisteredInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type AlterPushTokenInput struct {
	Token string `json:"token" validate:"required"`
	Op    string `json:"op" validate:"required,oneof=add remove"`
}

type AllowsNotificationsInput struct {
	AllowsNotifications *bool `json:"allowsNotifications" validate:"required"`
}

type UpdateProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AvatarURL string `json:"avatarURL"`
	BirthDate string `json:"birthDate"`
}
