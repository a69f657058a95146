package configuration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AmanShaikh33/HUDDLENEW/internal/auth"
	"github.com/AmanShaikh33/HUDDLENEW/internal/db"
	"github.com/AmanShaikh33/HUDDLENEW/internal/handler"
	"github.com/AmanShaikh33/HUDDLENEW/internal/hub"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
	"github.com/AmanShaikh33/HUDDLENEW/internal/repo"
	"github.com/AmanShaikh33/HUDDLENEW/internal/service"
)

const defaultConfigPath = "config.json"

type Container struct {
	MessageHandler handler.MessageHandler
	Hub            *hub.Hub
	Tokens         *auth.TokenManager
	Config         Config
	Logger         *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	// .env is optional; the environment may already be populated
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	secret := os.Getenv("JWT_SEC")
	if secret == "" {
		return nil, errors.New("JWT_SEC is not set")
	}

	tokens, err := auth.NewTokenManager(secret)
	if err != nil {
		return nil, err
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	messageRepo := repo.NewMessageRepository(
		db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection),
		logger,
	)
	userRepo := repo.NewUserRepository(
		db.NewRepository[model.User](con, config.ChatDatabase.UsersCollection),
	)

	h := hub.NewHub(messageRepo, tokens, config.CorsOrigins, logger)

	messageService := service.NewMessageService(
		userRepo,
		messageRepo,
		h.Delivery(),
		h.Relay(),
		h.Presence(),
		logger,
	)

	return &Container{
		MessageHandler: handler.NewMessageHandler(messageService),
		Hub:            h,
		Tokens:         tokens,
		Config:         *config,
		Logger:         logger,
		mongoClient:    con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
