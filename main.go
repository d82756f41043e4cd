package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/luciano-gp/pet-found/routes"
	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeCloudinary()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	// websocket clients cannot set headers on the upgrade request
	accessTokenVerifier.Extractors = append(accessTokenVerifier.Extractors, func(ctx iris.Context) string {
		return ctx.URLParam("token")
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint - CRITICAL for Render
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/apple", routes.AppleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Get("/search", accessTokenVerifierMiddleware, routes.SearchUsers)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AllowsNotifications)
		user.Patch("/{id}/profile", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.UpdateUserProfile)
		user.Get("/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUser)
	}

	contact := app.Party("/api/contact")
	{
		contact.Get("/", accessTokenVerifierMiddleware, routes.GetContact)
		contact.Post("/", accessTokenVerifierMiddleware, routes.CreateContact)
		contact.Put("/", accessTokenVerifierMiddleware, routes.UpdateContact)
		contact.Delete("/", accessTokenVerifierMiddleware, routes.DeleteContact)
	}

	report := app.Party("/api/report")
	{
		report.Get("/explore", routes.ExploreReports)
		report.Post("/", accessTokenVerifierMiddleware, routes.CreateReport)
		report.Get("/mine", accessTokenVerifierMiddleware, routes.GetUserReports)
		report.Get("/{id}", routes.GetReport)
		report.Put("/{id}", accessTokenVerifierMiddleware, routes.UpdateReport)
		report.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteReport)
	}

	lostPet := app.Party("/api/lostpet")
	{
		lostPet.Get("/explore", routes.ExploreLostPets)
		lostPet.Post("/", accessTokenVerifierMiddleware, routes.CreateLostPet)
		lostPet.Get("/mine", accessTokenVerifierMiddleware, routes.GetUserLostPets)
		lostPet.Get("/{id}", routes.GetLostPet)
		lostPet.Put("/{id}", accessTokenVerifierMiddleware, routes.UpdateLostPet)
		lostPet.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteLostPet)
	}

	adoptionPet := app.Party("/api/adoptionpet")
	{
		adoptionPet.Get("/explore", routes.ExploreAdoptionPets)
		adoptionPet.Post("/", accessTokenVerifierMiddleware, routes.CreateAdoptionPet)
		adoptionPet.Get("/mine", accessTokenVerifierMiddleware, routes.GetUserAdoptionPets)
		adoptionPet.Get("/{id}", routes.GetAdoptionPet)
		adoptionPet.Put("/{id}", accessTokenVerifierMiddleware, routes.UpdateAdoptionPet)
		adoptionPet.Patch("/{id}/adopted", accessTokenVerifierMiddleware, routes.SetAdopted)
		adoptionPet.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteAdoptionPet)
	}

	campaign := app.Party("/api/campaign")
	{
		campaign.Get("/explore", routes.ExploreCampaigns)
		campaign.Get("/{id}", routes.GetCampaign)
		campaign.Post("/", accessTokenVerifierMiddleware, utils.OngOnlyMiddleware, routes.CreateCampaign)
		campaign.Get("/", accessTokenVerifierMiddleware, utils.OngOnlyMiddleware, routes.GetOngCampaigns)
		campaign.Put("/{id}", accessTokenVerifierMiddleware, utils.OngOnlyMiddleware, routes.UpdateCampaign)
		campaign.Post("/{id}/raised", accessTokenVerifierMiddleware, utils.OngOnlyMiddleware, routes.AlterRaisedAmount)
		campaign.Delete("/{id}", accessTokenVerifierMiddleware, utils.OngOnlyMiddleware, routes.DeleteCampaign)
	}

	conversation := app.Party("/api/conversation")
	{
		conversation.Post("/", accessTokenVerifierMiddleware, routes.StartConversation)
		conversation.Get("/", accessTokenVerifierMiddleware, routes.GetUserThreads)
		conversation.Get("/{id}/messages", accessTokenVerifierMiddleware, routes.ListThreadMessages)
		conversation.Post("/{id}/messages", accessTokenVerifierMiddleware, routes.CreateMessage)
		conversation.Post("/{id}/typing", accessTokenVerifierMiddleware, routes.Typing)
		conversation.Get("/{id}/typing", accessTokenVerifierMiddleware, routes.ListTyping)
	}

	upload := app.Party("/api/upload")
	{
		upload.Post("/image", accessTokenVerifierMiddleware, routes.UploadImage)
	}

	app.Get("/api/ws", accessTokenVerifierMiddleware, routes.ChatWebsocket)

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	// Start server
	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
