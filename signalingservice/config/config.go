package config

type YamlFirestoreConfig struct {
	UsersCollectionName     string `yaml:"users_collection_name"`
	ChatsCollectionName     string `yaml:"chats_collection_name"`
	UserChatsCollectionName string `yaml:"user_chats_collection_name"`
}

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

// YamlConfig defines the structure for unmarshaling the embedded config.yaml file.
type YamlConfig struct {
	ProjectID          string              `yaml:"project_id"`
	RunMode            string              `yaml:"run_mode"`
	APIPort            string              `yaml:"api_port"`
	WebSocketPort      string              `yaml:"websocket_port"`
	IdentityServiceURL string              `yaml:"identity_service_url"`
	Cors               YamlCorsConfig      `yaml:"cors"`
	Firestore          YamlFirestoreConfig `yaml:"firestore"`
}

// AppConfig is the canonical, validated configuration object used throughout the application.
type AppConfig struct {
	ProjectID          string
	RunMode            string
	APIPort            string
	WebSocketPort      string
	IdentityServiceURL string
	Cors               YamlCorsConfig
	Firestore          YamlFirestoreConfig
}
