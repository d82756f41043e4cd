package storage

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Image objects live in Cloudinary, one folder per feature. The folder
// names mirror the app's storage buckets.
// Env: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET.
const (
	FolderPetImages  = "pet-images"
	FolderChatImages = "chat-images"
	FolderAvatars    = "avatars"
)

func InitializeCloudinary() {
	if os.Getenv("CLOUDINARY_CLOUD_NAME") == "" {
		fmt.Println("Warning: Cloudinary env vars not set, image upload disabled")
	}
}

type cloudinaryConfig struct {
	cloudName string
	apiKey    string
	apiSecret string
}

func loadCloudinaryConfig() (*cloudinaryConfig, error) {
	cfg := &cloudinaryConfig{
		cloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		apiKey:    os.Getenv("CLOUDINARY_API_KEY"),
		apiSecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}
	if cfg.cloudName == "" || cfg.apiKey == "" || cfg.apiSecret == "" {
		return nil, errors.New("missing Cloudinary credentials")
	}
	return cfg, nil
}

// sign builds the SHA1 signature Cloudinary expects over public_id+timestamp.
func (c *cloudinaryConfig) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}

// UploadBase64Image uploads a base64 image (raw or data URL) into the given
// folder and returns its public URL.
func UploadBase64Image(base64ImageSrc, folder string) (string, error) {
	if base64ImageSrc == "" {
		return "", errors.New("empty image payload")
	}

	cfg, err := loadCloudinaryConfig()
	if err != nil {
		return "", err
	}

	payload := base64ImageSrc
	if i := strings.Index(base64ImageSrc, ","); i != -1 {
		payload = base64ImageSrc[i+1:]
	}

	publicID := folder + "/" + uuid.NewString()
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", cfg.apiKey)
	form.Add("public_id", publicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", cfg.sign(publicID, timestamp))

	endpoint := "https://api.cloudinary.com/v1_1/" + cfg.cloudName + "/image/upload"
	res, err := http.Post(endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cloudinary upload status %d: %s", res.StatusCode, string(body))
	}

	var uploadRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &uploadRes); err != nil {
		return "", err
	}
	if uploadRes.Error.Message != "" {
		return "", errors.New("cloudinary: " + uploadRes.Error.Message)
	}

	publicURL := uploadRes.SecureURL
	if publicURL == "" {
		publicURL = uploadRes.URL
	}
	if publicURL == "" {
		return "", errors.New("cloudinary returned no URL")
	}

	return publicURL, nil
}

// IsCloudinaryURL reports whether the value is already a hosted image URL
// rather than a raw base64 payload still needing an upload.
func IsCloudinaryURL(value string) bool {
	return strings.Contains(value, "res.cloudinary.com")
}

// DeleteImage removes an uploaded image, given its public URL.
// URL format: https://res.cloudinary.com/{cloud}/image/upload/v{n}/{folder}/{id}.{ext}
func DeleteImage(imageURL string) error {
	if !IsCloudinaryURL(imageURL) {
		return errors.New("not a Cloudinary URL")
	}

	cfg, err := loadCloudinaryConfig()
	if err != nil {
		return err
	}

	parts := strings.Split(imageURL, "/upload/")
	if len(parts) != 2 {
		return errors.New("unexpected Cloudinary URL format")
	}
	path := parts[1]
	// strip the version prefix and the file extension
	if i := strings.Index(path, "/"); i != -1 && strings.HasPrefix(path, "v") {
		path = path[i+1:]
	}
	if i := strings.LastIndex(path, "."); i != -1 {
		path = path[:i]
	}
	publicID := path

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("public_id", publicID)
	form.Add("api_key", cfg.apiKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", cfg.sign(publicID, timestamp))

	endpoint := "https://api.cloudinary.com/v1_1/" + cfg.cloudName + "/image/destroy"
	res, err := http.Post(endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary destroy status %d: %s", res.StatusCode, string(body))
	}

	var deleteRes struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &deleteRes); err != nil {
		return err
	}
	if deleteRes.Error.Message != "" {
		return errors.New("cloudinary: " + deleteRes.Error.Message)
	}
	if deleteRes.Result != "ok" && deleteRes.Result != "not found" {
		return errors.New("cloudinary destroy result: " + deleteRes.Result)
	}

	return nil
}
