package configuration

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri                     string `json:"uri"`
	Database                string `json:"database"`
	MessagesCollection      string `json:"messagesCollection"`
	DeletionsCollection     string `json:"deletionsCollection"`
	FriendshipsCollection   string `json:"friendshipsCollection"`
	ProfilesCollection      string `json:"profilesCollection"`
	SubscriptionsCollection string `json:"subscriptionsCollection"`
	SocketRoute             string `json:"socketRoute"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port"`
	SocketPort     int      `json:"socket_port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

type PushConfig struct {
	VAPIDPublicKey  string `json:"vapid_public_key"`
	VAPIDPrivateKey string `json:"vapid_private_key"`
	Subject         string `json:"subject"`
	Origin          string `json:"origin"`
	DefaultIcon     string `json:"default_icon"`
}

type Config struct {
	ChatDatabase MongoConfig  `json:"mongo"`
	Server       ServerConfig `json:"server"`
	Auth         AuthConfig   `json:"auth"`
	Push         PushConfig   `json:"push"`
}

func LoadConfig(configPath string) (*Config, error) {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	// Secrets come from the environment when set; the JSON file carries
	// dev defaults only.
	_ = godotenv.Load()
	if v := os.Getenv("MONGO_URI"); v != "" {
		config.ChatDatabase.Uri = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("VAPID_PUBLIC_KEY"); v != "" {
		config.Push.VAPIDPublicKey = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		config.Push.VAPIDPrivateKey = v
	}

	return &config, nil
}
