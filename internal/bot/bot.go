// Package bot wires the leveling engine to Discord: message events feed XP
// accrual, slash commands expose rank, leaderboard, and admin operations.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"go.uber.org/zap"

	"github.com/Suhaib3100/quasar-2.0/internal/database"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling"
	"github.com/Suhaib3100/quasar-2.0/internal/redis"
	"github.com/Suhaib3100/quasar-2.0/internal/setup/config"
)

// Bot holds the Discord client and the leveling engine components it drives.
type Bot struct {
	db          database.Client
	client      bot.Client
	config      *config.Config
	accrual     *leveling.Accrual
	leaderboard *leveling.Leaderboard
	adminOps    *leveling.AdminOps
	auth        leveling.Authorizer
	logger      *zap.Logger
}

// New initializes a Bot instance, building the leveling engine on top of
// the database client and configuring the Discord client with the gateway
// intents and event listeners it needs.
func New(
	db database.Client,
	redisManager *redis.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) (*Bot, error) {
	b := &Bot{
		db:     db,
		config: cfg,
		logger: logger.Named("bot"),
	}

	client, err := disgo.New(cfg.Bot.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnGuildMessageCreate:            b.handleGuildMessageCreate,
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
		}),
	)
	if err != nil {
		return nil, err
	}

	b.client = client

	// Cooldown state moves to Redis when multiple bot processes share one
	// database; otherwise a process-local gate is enough.
	var gate leveling.CooldownGate
	if cfg.Redis.SharedCooldown {
		redisClient, err := redisManager.GetClient(redis.CooldownDBIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to get cooldown redis client: %w", err)
		}

		gate = leveling.NewRedisGate(redisClient)
	} else {
		gate = leveling.NewMemoryGate(nil)
	}

	syncTimeout := time.Duration(cfg.Leveling.SyncTimeoutMs) * time.Millisecond
	syncer := leveling.NewSyncer(
		newRoleClient(client),
		db.Model().RoleReward(),
		syncTimeout,
		logger,
	)

	b.accrual = leveling.NewAccrual(gate, db.Model().Progression(), syncer, leveling.AccrualConfig{
		BaseAmount:  cfg.Leveling.BaseXP,
		JitterRange: cfg.Leveling.JitterRange,
		Cooldown:    time.Duration(cfg.Leveling.CooldownMs) * time.Millisecond,
		SyncTimeout: syncTimeout,
	}, logger)

	b.auth = newAuthorizer(client)
	b.leaderboard = leveling.NewLeaderboard(db.Model().Progression(), logger)
	b.adminOps = leveling.NewAdminOps(b.auth, db.Service().Progression(), db.Model().Audit(), syncer, logger)

	return b, nil
}

// Start registers the slash commands with Discord and opens the gateway
// connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	_, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commands())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the gateway connection and waits for
// in-flight role syncs to finish.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
	b.accrual.Wait()
}
