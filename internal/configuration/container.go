package configuration

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Mantuja-khan/ChatApplication/internal/chat"
	"github.com/Mantuja-khan/ChatApplication/internal/db"
	"github.com/Mantuja-khan/ChatApplication/internal/handler"
	"github.com/Mantuja-khan/ChatApplication/internal/hub"
	"github.com/Mantuja-khan/ChatApplication/internal/model"
	"github.com/Mantuja-khan/ChatApplication/internal/push"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"
	"github.com/Mantuja-khan/ChatApplication/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Container struct {
	ChatHandler   handler.ChatHandler
	FriendHandler handler.FriendHandler
	PushHandler   handler.PushHandler
	Hub           *hub.Hub
	Registry      *chat.Registry
	Config        Config
	Logger        *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
	messageFeed *db.ChangeFeed[model.Message]
	notifier    *push.Notifier
}

func BuildContainer(configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewProduction()

	messagesColl := db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection)
	deletionsColl := db.NewRepository[model.MessageDeletion](con, config.ChatDatabase.DeletionsCollection)
	friendshipsColl := db.NewRepository[model.Friendship](con, config.ChatDatabase.FriendshipsCollection)
	profilesColl := db.NewRepository[model.Profile](con, config.ChatDatabase.ProfilesCollection)
	subscriptionsColl := db.NewRepository[model.PushSubscription](con, config.ChatDatabase.SubscriptionsCollection)

	messageRepo := repo.NewMessageRepository(messagesColl, deletionsColl, logger)
	friendshipRepo := repo.NewFriendshipRepository(friendshipsColl, logger)
	profileRepo := repo.NewProfileRepository(profilesColl)
	subscriptionRepo := repo.NewPushSubscriptionRepository(subscriptionsColl)

	// Durable channel: change feed over the messages collection.
	messageFeed := db.NewChangeFeed[model.Message](messagesColl.Collection(), logger)
	messageFeed.Start(context.Background())

	// Fast channel: the websocket hub.
	chatHub := hub.NewHub(messageRepo, logger)

	subscriber := chat.NewSubscriber(chatHub, messageFeed, logger)
	registry := chat.NewRegistry(subscriber)

	dispatcher := chat.NewDispatcher(config.Push.Origin, config.Push.DefaultIcon)
	relay := push.NewRelay(subscriptionRepo, config.Push.VAPIDPublicKey, config.Push.VAPIDPrivateKey, config.Push.Subject, logger)
	notifier := push.NewNotifier(relay, dispatcher, profileRepo, chatHub, logger)
	notifier.Start(messageFeed)

	chatService := service.NewChatService(messageRepo, friendshipRepo, profileRepo, chatHub, logger)
	friendService := service.NewFriendService(friendshipRepo, profileRepo, relay, logger)

	return &Container{
		ChatHandler:   handler.NewChatHandler(chatService),
		FriendHandler: handler.NewFriendHandler(friendService),
		PushHandler:   handler.NewPushHandler(relay, subscriptionRepo),
		Hub:           chatHub,
		Registry:      registry,
		Config:        *config,
		Logger:        logger,
		mongoClient:   con,
		messageFeed:   messageFeed,
		notifier:      notifier,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	if c.Registry != nil {
		c.Registry.CloseAll()
	}

	if c.notifier != nil {
		c.notifier.Stop()
	}

	if c.messageFeed != nil {
		c.messageFeed.Stop()
	}

	// Stop the hub (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
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
