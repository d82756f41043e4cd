package routes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm/clause"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/realtime"
	"github.com/luciano-gp/pet-found/services"
	"github.com/luciano-gp/pet-found/storage"
	"github.com/luciano-gp/pet-found/utils"
)

var chatNotifications = services.NewNotificationService()

// participantKey is the canonical identity of a two-party thread,
// "minID:maxID". The unique index on it makes thread creation
// race-free without advisory locks.
func participantKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// StartConversation resolves the thread between the caller and the
// target user, creating it if it does not exist. Calling it repeatedly
// with the same pair always yields the same thread.
func StartConversation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input StartConversationInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.UserID == claims.ID {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Cannot start a conversation with yourself.", ctx)
		return
	}

	var other models.User
	otherExists := storage.DB.Where("id = ?", input.UserID).Find(&other)
	if otherExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if otherExists.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "User not found", ctx)
		return
	}

	key := participantKey(claims.ID, input.UserID)

	thread, created, threadErr := resolveThread(key, claims.ID, input.UserID)
	if threadErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if loadErr := loadThread(thread); loadErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if created {
		realtime.DefaultHub.Publish(participantIDs(thread), realtime.Event{
			Type: realtime.EventThreadCreated,
			Data: thread,
		})
	}

	ctx.JSON(iris.Map{"success": true, "created": created, "thread": thread})
}

// resolveThread finds the thread for key or creates it. On a
// concurrent insert the ON CONFLICT DO NOTHING leaves RowsAffected at
// zero and the winning row is re-selected. The membership rows are
// upserted on every resolution, not just on create: a thread row that
// persisted without its participants (a crash between the two inserts)
// is repaired the next time either user resolves the pair.
func resolveThread(key string, creatorID, otherID uint) (*models.ChatThread, bool, error) {
	var thread models.ChatThread
	found := storage.DB.Where("participant_key = ?", key).Limit(1).Find(&thread)
	if found.Error != nil {
		return nil, false, found.Error
	}

	created := false
	if found.RowsAffected == 0 {
		thread = models.ChatThread{
			CreatedBy:      creatorID,
			ParticipantKey: key,
		}
		insert := storage.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&thread)
		if insert.Error != nil {
			return nil, false, insert.Error
		}

		created = insert.RowsAffected > 0
		if !created {
			// lost the race; the other writer owns the row now
			reselect := storage.DB.Where("participant_key = ?", key).First(&thread)
			if reselect.Error != nil {
				return nil, false, reselect.Error
			}
		}
	}

	participants := []models.ChatParticipant{
		{ThreadID: thread.ID, UserID: creatorID},
		{ThreadID: thread.ID, UserID: otherID},
	}
	if err := storage.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants).Error; err != nil {
		return nil, false, err
	}

	return &thread, created, nil
}

func loadThread(thread *models.ChatThread) error {
	return storage.DB.
		Preload("Participants").
		Preload("Participants.User").
		First(thread, thread.ID).Error
}

func participantIDs(thread *models.ChatThread) []uint {
	ids := make([]uint, 0, len(thread.Participants))
	for _, p := range thread.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// GetUserThreads lists every thread the caller participates in, newest
// activity first, each annotated with its last message.
func GetUserThreads(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var memberships []models.ChatParticipant
	if err := storage.DB.Where("user_id = ?", claims.ID).Find(&memberships).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	threadIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		threadIDs = append(threadIDs, m.ThreadID)
	}

	if len(threadIDs) == 0 {
		ctx.JSON(iris.Map{"success": true, "threads": []interface{}{}})
		return
	}

	var threads []models.ChatThread
	if err := storage.DB.
		Preload("Participants").
		Preload("Participants.User").
		Where("id IN ?", threadIDs).
		Find(&threads).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	type threadWithLastMessage struct {
		models.ChatThread
		LastMessage *models.ChatMessage `json:"lastMessage"`
	}

	annotated := make([]threadWithLastMessage, 0, len(threads))
	for i := range threads {
		var last models.ChatMessage
		lastQuery := storage.DB.
			Where("thread_id = ?", threads[i].ID).
			Order("created_at DESC, id DESC").
			Limit(1).
			Preload("Sender").
			Find(&last)
		entry := threadWithLastMessage{ChatThread: threads[i]}
		if lastQuery.Error == nil && lastQuery.RowsAffected > 0 {
			entry.LastMessage = &last
		}
		annotated = append(annotated, entry)
	}

	// a thread with no messages yet counts as active at creation
	lastActivity := func(t threadWithLastMessage) time.Time {
		if t.LastMessage != nil {
			return t.LastMessage.CreatedAt
		}
		return t.CreatedAt
	}
	sort.SliceStable(annotated, func(i, j int) bool {
		return lastActivity(annotated[i]).After(lastActivity(annotated[j]))
	})

	ctx.JSON(iris.Map{"success": true, "threads": annotated})
}

// ListThreadMessages returns a thread's messages in ascending order of
// creation. Only participants may read a thread.
func ListThreadMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	threadID, convErr := strconv.ParseUint(ctx.Params().Get("id"), 10, 64)
	if convErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid thread id.", ctx)
		return
	}

	if !isThreadParticipant(uint(threadID), claims.ID, ctx) {
		return
	}

	var messages []models.ChatMessage
	if err := storage.DB.
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Preload("Sender").
		Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "messages": messages})
}

// CreateMessage appends a message to a thread. A message must carry
// text, an image, or both; image-only messages keep content null.
func CreateMessage(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	threadID, convErr := strconv.ParseUint(ctx.Params().Get("id"), 10, 64)
	if convErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid thread id.", ctx)
		return
	}

	if !isThreadParticipant(uint(threadID), claims.ID, ctx) {
		return
	}

	var input CreateMessageInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Content == "" && input.Image == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "A message needs text or an image.", ctx)
		return
	}

	var imageURL *string
	if input.Image != "" {
		url := input.Image
		if !storage.IsCloudinaryURL(url) {
			uploaded, uploadErr := storage.UploadBase64Image(url, storage.FolderChatImages)
			if uploadErr != nil {
				utils.CreateInternalServerError(ctx)
				return
			}
			url = uploaded
		}
		imageURL = &url
	}

	var content *string
	if input.Content != "" {
		content = &input.Content
	}

	message := models.ChatMessage{
		ThreadID: uint(threadID),
		SenderID: claims.ID,
		Content:  content,
		ImageURL: imageURL,
	}

	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DB.Preload("Sender").First(&message, message.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var participants []models.ChatParticipant
	storage.DB.Where("thread_id = ?", threadID).Preload("User").Find(&participants)

	ids := make([]uint, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}

	realtime.DefaultHub.Publish(ids, realtime.Event{
		Type: realtime.EventMessageCreated,
		Data: message,
	})

	preview := ""
	if content != nil {
		preview = *content
	}
	senderName := message.Sender.FirstName
	for _, p := range participants {
		if p.UserID != claims.ID {
			// the receiver is loaded here so the goroutine never
			// touches the database after the request ends
			receiver := p.User
			go chatNotifications.SendMessageNotification(&receiver, claims.ID, uint(threadID), senderName, preview)
		}
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "message": message})
}

func isThreadParticipant(threadID, userID uint, ctx iris.Context) bool {
	var participant models.ChatParticipant
	query := storage.DB.
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Limit(1).
		Find(&participant)

	if query.Error != nil {
		utils.CreateInternalServerError(ctx)
		return false
	}
	if query.RowsAffected == 0 {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "Not a participant of this conversation.", ctx)
		return false
	}
	return true
}

func typingKey(threadID string, userID uint) string {
	return "typing:" + threadID + ":" + strconv.FormatUint(uint64(userID), 10)
}

// Typing flags the caller as typing in a thread for 5 seconds.
func Typing(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	threadID := ctx.Params().Get("id")

	var input TypingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	bgCtx := context.Background()
	key := typingKey(threadID, claims.ID)

	if input.Typing {
		if err := storage.Redis.Set(bgCtx, key, "1", 5*time.Second).Err(); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	} else {
		if err := storage.Redis.Del(bgCtx, key).Err(); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// ListTyping returns the IDs of users currently typing in a thread.
func ListTyping(ctx iris.Context) {
	threadID := ctx.Params().Get("id")

	bgCtx := context.Background()
	keys, err := storage.Redis.Keys(bgCtx, "typing:"+threadID+":*").Result()
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	userIDs := make([]uint, 0, len(keys))
	prefix := len("typing:" + threadID + ":")
	for _, key := range keys {
		id, convErr := strconv.ParseUint(key[prefix:], 10, 64)
		if convErr != nil {
			continue
		}
		userIDs = append(userIDs, uint(id))
	}

	ctx.JSON(iris.Map{"success": true, "typing": userIDs})
}

type StartConversationInput struct {
	UserID uint `json:"userID" validate:"required"`
}

type CreateMessageInput struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

type TypingInput struct {
	Typing bool `json:"typing"`
}
