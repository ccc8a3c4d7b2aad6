package config

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	Cloud     CloudConfig
	Qdrant    QdrantConfig
	Ollama    OllamaConfig
	Rerank    RerankConfig
	Retrieval RetrievalConfig
	Routing   RoutingConfig

	// Optional YAML file overriding the built-in heuristics tables
	HeuristicsFile string `envconfig:"HEURISTICS_FILE"`
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8000"`
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
}

type CloudConfig struct {
	Provider       string `envconfig:"OPENAI_PROVIDER" default:"openai"`
	APIKey         string `envconfig:"OPENAI_API_KEY"`
	APIEndpoint    string `envconfig:"OPENAI_ENDPOINT" default:"https://api.openai.com/v1"`
	Model          string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	DeploymentName string `envconfig:"OPENAI_DEPLOYMENT" default:"gpt-4o"`
	APIVersion     string `envconfig:"OPENAI_API_VERSION" default:"2023-05-15"`
}

type QdrantConfig struct {
	URL        string        `envconfig:"QDRANT_URL" default:"http://127.0.0.1:6333"`
	Collection string        `envconfig:"QDRANT_COLLECTION" default:"tech_knowledge_base"`
	Timeout    time.Duration `envconfig:"QDRANT_TIMEOUT" default:"10s"`
}

type OllamaConfig struct {
	URL        string        `envconfig:"OLLAMA_URL" default:"http://127.0.0.1:11434"`
	Model      string        `envconfig:"OLLAMA_MODEL" default:"phi3.5:3.8b-mini-instruct-q4_0"`
	EmbedModel string        `envconfig:"EMBED_MODEL" default:"bge-m3"`
	Timeout    time.Duration `envconfig:"OLLAMA_TIMEOUT" default:"180s"`
}

type RerankConfig struct {
	URL     string        `envconfig:"RERANK_URL" default:"http://127.0.0.1:8787"`
	Timeout time.Duration `envconfig:"RERANK_TIMEOUT" default:"30s"`
}

type RetrievalConfig struct {
	// TopK candidates fetched from the vector index before reranking
	TopK int `envconfig:"TOPK" default:"12"`

	// ContextK reranked chunks assembled into the citation prompt
	ContextK int `envconfig:"CONTEXT_K" default:"4"`

	// Temperature for local generation; kept low to favor factuality
	Temperature float64 `envconfig:"LOCAL_TEMPERATURE" default:"0.1"`
}

type RoutingConfig struct {
	// LocalFirst prefers the local RAG path when the analyzer recommends it
	LocalFirst bool `envconfig:"ROUTE_LOCAL_FIRST" default:"true"`

	// LocalOnly disables the cloud path entirely (no escalation)
	LocalOnly bool `envconfig:"ROUTE_LOCAL_ONLY" default:"false"`

	LocalTimeout time.Duration `envconfig:"LOCAL_PATH_TIMEOUT" default:"120s"`
	CloudTimeout time.Duration `envconfig:"CLOUD_PATH_TIMEOUT" default:"60s"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully")
	return &cfg, nil
}
