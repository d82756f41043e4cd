package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

// setupTestDB swaps storage.DB for an in-memory sqlite database so
// handlers run against a real gorm connection.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	migrateErr := db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.ChatThread{},
		&models.ChatParticipant{},
		&models.ChatMessage{},
	)
	if migrateErr != nil {
		t.Fatalf("failed to migrate test db: %v", migrateErr)
	}

	storage.DB = db
}

func createTestUser(t *testing.T, firstName string) *models.User {
	t.Helper()

	user := models.User{
		FirstName: firstName,
		LastName:  "Teste",
		Email:     fmt.Sprintf("%s-%s@example.com", firstName, t.Name()),
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func buildChatTestApp(t *testing.T) *iris.Application {
	t.Helper()

	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	conversation := app.Party("/api/conversation")
	{
		conversation.Post("/", accessTokenVerifierMiddleware, StartConversation)
		conversation.Get("/", accessTokenVerifierMiddleware, GetUserThreads)
		conversation.Get("/{id}/messages", accessTokenVerifierMiddleware, ListThreadMessages)
		conversation.Post("/{id}/messages", accessTokenVerifierMiddleware, CreateMessage)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build test app: %v", err)
	}
	return app
}

func signAccessToken(userID uint) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 15*time.Minute)
	token, _ := signer.Sign(utils.AccessToken{ID: userID})
	return string(token)
}

func doJSON(app *iris.Application, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

type threadResponse struct {
	Success bool `json:"success"`
	Created bool `json:"created"`
	Thread  struct {
		ID           uint `json:"id"`
		Participants []struct {
			UserID uint `json:"userID"`
		} `json:"participants"`
	} `json:"thread"`
}

func startConversation(t *testing.T, app *iris.Application, token string, otherID uint) threadResponse {
	t.Helper()

	resp := doJSON(app, http.MethodPost, "/api/conversation", token, iris.Map{"userID": otherID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 starting conversation, got %d: %s", resp.Code, resp.Body.String())
	}

	var out threadResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode thread response: %v", err)
	}
	return out
}

func TestStartConversationIsIdempotent(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")

	first := startConversation(t, app, signAccessToken(alice.ID), bruno.ID)
	if !first.Created {
		t.Fatalf("expected first call to create the thread")
	}

	// same pair again, from either side
	second := startConversation(t, app, signAccessToken(alice.ID), bruno.ID)
	third := startConversation(t, app, signAccessToken(bruno.ID), alice.ID)

	if second.Created || third.Created {
		t.Fatalf("expected repeat calls to reuse the thread")
	}
	if second.Thread.ID != first.Thread.ID || third.Thread.ID != first.Thread.ID {
		t.Fatalf("expected one thread per pair, got %d, %d, %d", first.Thread.ID, second.Thread.ID, third.Thread.ID)
	}

	var count int64
	storage.DB.Model(&models.ChatThread{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 thread, found %d", count)
	}
}

func TestStartConversationRepairsThreadWithoutParticipants(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")

	// a keyed thread row whose participant rows never made it in
	a, b := alice.ID, bruno.ID
	if a > b {
		a, b = b, a
	}
	orphan := models.ChatThread{
		CreatedBy:      alice.ID,
		ParticipantKey: fmt.Sprintf("%d:%d", a, b),
	}
	if err := storage.DB.Create(&orphan).Error; err != nil {
		t.Fatalf("failed to seed orphaned thread: %v", err)
	}

	out := startConversation(t, app, signAccessToken(alice.ID), bruno.ID)
	if out.Thread.ID != orphan.ID {
		t.Fatalf("expected orphaned thread %d to be reused, got %d", orphan.ID, out.Thread.ID)
	}
	if len(out.Thread.Participants) != 2 {
		t.Fatalf("expected resolution to restore 2 participants, got %d", len(out.Thread.Participants))
	}

	// both users can use the thread again
	path := fmt.Sprintf("/api/conversation/%d/messages", orphan.ID)
	for _, userID := range []uint{alice.ID, bruno.ID} {
		resp := doJSON(app, http.MethodPost, path, signAccessToken(userID), iris.Map{"content": "oi"})
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 from user %d after repair, got %d: %s", userID, resp.Code, resp.Body.String())
		}
	}
}

func TestStartConversationParticipants(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")

	out := startConversation(t, app, signAccessToken(alice.ID), bruno.ID)

	if len(out.Thread.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(out.Thread.Participants))
	}
	got := map[uint]bool{}
	for _, p := range out.Thread.Participants {
		got[p.UserID] = true
	}
	if !got[alice.ID] || !got[bruno.ID] {
		t.Fatalf("expected participants {%d, %d}, got %v", alice.ID, bruno.ID, got)
	}
}

func TestStartConversationWithSelfFails(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")

	resp := doJSON(app, http.MethodPost, "/api/conversation", signAccessToken(alice.ID), iris.Map{"userID": alice.ID})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self conversation, got %d", resp.Code)
	}
}

func TestNewThreadHasNoMessages(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")

	out := startConversation(t, app, signAccessToken(alice.ID), bruno.ID)

	resp := doJSON(app, http.MethodGet, fmt.Sprintf("/api/conversation/%d/messages", out.Thread.ID), signAccessToken(alice.ID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 listing messages, got %d", resp.Code)
	}

	var list struct {
		Messages []json.RawMessage `json:"messages"`
	}
	json.Unmarshal(resp.Body.Bytes(), &list)
	if len(list.Messages) != 0 {
		t.Fatalf("expected empty message list, got %d", len(list.Messages))
	}
}

func TestCreateMessageContentRules(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")

	out := startConversation(t, app, signAccessToken(alice.ID), bruno.ID)
	path := fmt.Sprintf("/api/conversation/%d/messages", out.Thread.ID)
	token := signAccessToken(alice.ID)

	// neither text nor image
	empty := doJSON(app, http.MethodPost, path, token, iris.Map{})
	if empty.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", empty.Code)
	}

	// plain text
	text := doJSON(app, http.MethodPost, path, token, iris.Map{"content": "oi"})
	if text.Code != http.StatusCreated {
		t.Fatalf("expected 201 for text message, got %d: %s", text.Code, text.Body.String())
	}

	// image only keeps content null
	image := doJSON(app, http.MethodPost, path, token, iris.Map{"image": "https://res.cloudinary.com/demo/image/upload/chat-images/abc.jpg"})
	if image.Code != http.StatusCreated {
		t.Fatalf("expected 201 for image message, got %d: %s", image.Code, image.Body.String())
	}

	var imageMsg struct {
		Message struct {
			Content  *string `json:"content"`
			ImageURL *string `json:"imageURL"`
		} `json:"message"`
	}
	json.Unmarshal(image.Body.Bytes(), &imageMsg)
	if imageMsg.Message.Content != nil {
		t.Fatalf("expected null content on image-only message, got %q", *imageMsg.Message.Content)
	}
	if imageMsg.Message.ImageURL == nil {
		t.Fatalf("expected image URL on image-only message")
	}
}

func TestListMessagesAscendingWithoutDuplicates(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")

	out := startConversation(t, app, signAccessToken(alice.ID), bruno.ID)
	path := fmt.Sprintf("/api/conversation/%d/messages", out.Thread.ID)

	senders := []uint{alice.ID, bruno.ID, alice.ID, alice.ID, bruno.ID}
	for i, senderID := range senders {
		resp := doJSON(app, http.MethodPost, path, signAccessToken(senderID), iris.Map{"content": fmt.Sprintf("mensagem %d", i)})
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 for message %d, got %d", i, resp.Code)
		}
	}

	resp := doJSON(app, http.MethodGet, path, signAccessToken(bruno.ID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 listing messages, got %d", resp.Code)
	}

	var list struct {
		Messages []struct {
			ID      uint    `json:"id"`
			Content *string `json:"content"`
		} `json:"messages"`
	}
	json.Unmarshal(resp.Body.Bytes(), &list)

	if len(list.Messages) != len(senders) {
		t.Fatalf("expected %d messages, got %d", len(senders), len(list.Messages))
	}

	seen := map[uint]bool{}
	for i, msg := range list.Messages {
		if seen[msg.ID] {
			t.Fatalf("duplicate message ID %d in list", msg.ID)
		}
		seen[msg.ID] = true
		if i > 0 && msg.ID < list.Messages[i-1].ID {
			t.Fatalf("messages out of order: %d after %d", msg.ID, list.Messages[i-1].ID)
		}
		want := fmt.Sprintf("mensagem %d", i)
		if msg.Content == nil || *msg.Content != want {
			t.Fatalf("expected content %q at position %d", want, i)
		}
	}
}

func TestNonParticipantCannotReadOrWrite(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")
	carla := createTestUser(t, "Carla")

	out := startConversation(t, app, signAccessToken(alice.ID), bruno.ID)
	path := fmt.Sprintf("/api/conversation/%d/messages", out.Thread.ID)
	intruder := signAccessToken(carla.ID)

	read := doJSON(app, http.MethodGet, path, intruder, nil)
	if read.Code != http.StatusForbidden {
		t.Fatalf("expected 403 reading as non-participant, got %d", read.Code)
	}

	write := doJSON(app, http.MethodPost, path, intruder, iris.Map{"content": "oi"})
	if write.Code != http.StatusForbidden {
		t.Fatalf("expected 403 writing as non-participant, got %d", write.Code)
	}
}

func TestGetUserThreadsNewestActivityFirst(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")
	carla := createTestUser(t, "Carla")

	withAlice := startConversation(t, app, signAccessToken(bruno.ID), alice.ID)
	withCarla := startConversation(t, app, signAccessToken(bruno.ID), carla.ID)

	// a message in the older thread moves it back to the top
	time.Sleep(10 * time.Millisecond)
	path := fmt.Sprintf("/api/conversation/%d/messages", withAlice.Thread.ID)
	resp := doJSON(app, http.MethodPost, path, signAccessToken(alice.ID), iris.Map{"content": "oi"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 sending message, got %d", resp.Code)
	}

	list := doJSON(app, http.MethodGet, "/api/conversation", signAccessToken(bruno.ID), nil)
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200 listing threads, got %d", list.Code)
	}

	var out struct {
		Threads []struct {
			ID uint `json:"id"`
		} `json:"threads"`
	}
	json.Unmarshal(list.Body.Bytes(), &out)
	if len(out.Threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(out.Threads))
	}
	if out.Threads[0].ID != withAlice.Thread.ID || out.Threads[1].ID != withCarla.Thread.ID {
		t.Fatalf("expected thread %d before %d, got %d then %d",
			withAlice.Thread.ID, withCarla.Thread.ID, out.Threads[0].ID, out.Threads[1].ID)
	}
}

func TestGetUserThreadsListsOnlyOwn(t *testing.T) {
	setupTestDB(t)
	app := buildChatTestApp(t)

	alice := createTestUser(t, "Alice")
	bruno := createTestUser(t, "Bruno")
	carla := createTestUser(t, "Carla")

	startConversation(t, app, signAccessToken(alice.ID), bruno.ID)
	startConversation(t, app, signAccessToken(bruno.ID), carla.ID)

	resp := doJSON(app, http.MethodGet, "/api/conversation", signAccessToken(alice.ID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 listing threads, got %d", resp.Code)
	}

	var list struct {
		Threads []json.RawMessage `json:"threads"`
	}
	json.Unmarshal(resp.Body.Bytes(), &list)
	if len(list.Threads) != 1 {
		t.Fatalf("expected 1 thread for alice, got %d", len(list.Threads))
	}

	resp2 := doJSON(app, http.MethodGet, "/api/conversation", signAccessToken(bruno.ID), nil)
	var list2 struct {
		Threads []json.RawMessage `json:"threads"`
	}
	json.Unmarshal(resp2.Body.Bytes(), &list2)
	if len(list2.Threads) != 2 {
		t.Fatalf("expected 2 threads for bruno, got %d", len(list2.Threads))
	}
}
