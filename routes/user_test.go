package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

func buildUserTestApp(t *testing.T) *iris.Application {
	t.Helper()

	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	user := app.Party("/api/user")
	{
		user.Patch("/{id}/profile", accessTokenVerifierMiddleware, utils.UserIDMiddleware, UpdateUserProfile)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build test app: %v", err)
	}
	return app
}

func TestUpdateUserProfileFormatsCPF(t *testing.T) {
	setupTestDB(t)
	app := buildUserTestApp(t)

	user := models.User{
		FirstName: "Alice",
		LastName:  "Teste",
		Email:     "alice-profile@example.com",
		CPF:       "52998224725",
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	path := fmt.Sprintf("/api/user/%d/profile", user.ID)
	resp := doJSON(app, http.MethodPatch, path, signAccessToken(user.ID), iris.Map{
		"firstName": "Alícia",
		"lastName":  "Teste",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 updating profile, got %d: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		CPF  string          `json:"cpf"`
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode profile response: %v", err)
	}
	if out.CPF != "529.982.247-25" {
		t.Fatalf("expected formatted CPF, got %q", out.CPF)
	}

	// raw digits stay out of the serialized user
	var userFields map[string]interface{}
	json.Unmarshal(out.User, &userFields)
	if _, leaked := userFields["cpf"]; leaked {
		t.Fatalf("raw cpf leaked into user payload")
	}
}
