package main

import (
	"fmt"
	"log"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/storage"
)

// Backfills participant_key on threads created before the unique key
// existed. Threads whose key is already set are left alone.
func main() {
	storage.InitializeDB()

	var threads []models.ChatThread
	if err := storage.DB.Where("participant_key = '' OR participant_key IS NULL").Find(&threads).Error; err != nil {
		log.Fatalf("Error loading threads: %v", err)
	}

	updated := 0
	for i := range threads {
		var participants []models.ChatParticipant
		if err := storage.DB.Where("thread_id = ?", threads[i].ID).Find(&participants).Error; err != nil {
			log.Fatalf("Error loading participants for thread %d: %v", threads[i].ID, err)
		}
		if len(participants) != 2 {
			fmt.Printf("Skipping thread %d: %d participants\n", threads[i].ID, len(participants))
			continue
		}

		a, b := participants[0].UserID, participants[1].UserID
		if a > b {
			a, b = b, a
		}
		key := fmt.Sprintf("%d:%d", a, b)

		if err := storage.DB.Model(&threads[i]).Update("participant_key", key).Error; err != nil {
			// duplicate key means this pair already has a canonical thread
			fmt.Printf("Skipping thread %d: %v\n", threads[i].ID, err)
			continue
		}
		updated++
	}

	fmt.Printf("Thread key backfill completed: %d updated\n", updated)
}
