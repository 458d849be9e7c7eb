package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/mirelle/guildvault/cache"
	"github.com/mirelle/guildvault/helpers"
	"github.com/mirelle/guildvault/logging"
	"github.com/mirelle/guildvault/metrics"
	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/raven-go"
	"github.com/go-redis/redis"
	"github.com/joho/godotenv"
	"github.com/kz/discordrus"
	"github.com/sirupsen/logrus"
)

// Entrypoint
func main() {
	var err error

	log := logrus.New()
	log.Out = os.Stdout
	log.Level = logrus.DebugLevel
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339}
	log.Hooks = make(logrus.LevelHooks)
	cache.SetLogger(log)

	// Read .env and config
	godotenv.Load()

	configPath := os.Getenv("GUILDVAULT_CONFIG")
	if configPath == "" {
		configPath = "config.json"
	}
	helpers.LoadConfig(configPath)
	config := helpers.GetConfig()

	// Check if the bot is being debugged
	if config.Path("debug").Data().(bool) {
		helpers.DEBUG_MODE = true
	}

	if config.Path("logging.jsonfile").Data().(string) != "" {
		fileHook, err := logging.NewLogrusFileHook(config.Path("logging.jsonfile").Data().(string), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
		if err != nil {
			log.WithField("module", "launcher").Error("logrus file hook failed, err:", err.Error())
		} else {
			log.Hooks.Add(fileHook)
		}
	}

	if config.Path("logging.discord_webhook").Data().(string) != "" {
		log.Hooks.Add(discordrus.NewHook(
			config.Path("logging.discord_webhook").Data().(string),
			logrus.ErrorLevel,
			&discordrus.Opts{
				Username:         "Logging",
				DisableTimestamp: false,
				TimestampFormat:  "Jan 2 15:04:05.00000",
			},
		))
	}

	log.WithField("module", "launcher").Info("Booting GuildVault...")

	// Read i18n
	helpers.LoadTranslations()

	// Start metric server
	metrics.Init()

	// Call home
	if config.Path("sentry").Data().(string) != "" {
		log.WithField("module", "launcher").Info("[SENTRY] Calling home...")
		err = raven.SetDSN(config.Path("sentry").Data().(string))
		if err != nil {
			panic(err)
		}
	}

	// Connect to mongodb
	log.WithField("module", "launcher").Info("Opening database connection...")
	helpers.ConnectMDB(
		config.Path("mongodb.url").Data().(string),
		config.Path("mongodb.database").Data().(string),
	)

	// Close db when main dies
	defer helpers.GetMDbSession().Close()

	// Connect to redis
	log.WithField("module", "launcher").Info("Connecting to redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Path("redis.address").Data().(string),
		Password: "", // no password set
		DB:       0,  // use default DB
	})
	cache.SetRedisClient(redisClient)

	// Connect and add event handlers
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		pc, file, line, _ := runtime.Caller(caller)

		files := strings.Split(file, "/")
		file = files[len(files)-1]

		name := runtime.FuncForPC(pc).Name()
		fns := strings.Split(name, ".")
		name = fns[len(fns)-1]

		msg := format
		if strings.Contains(msg, "%") {
			msg = fmt.Sprintf(format, a...)
		}

		switch msgL {
		case discordgo.LogError:
			log.WithField("module", "discordgo").Errorf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogWarning:
			log.WithField("module", "discordgo").Warnf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogInformational:
			log.WithField("module", "discordgo").Infof("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogDebug:
			log.WithField("module", "discordgo").Debugf("%s:%d:%s() %s", file, line, name, msg)
		}
	}

	log.WithField("module", "launcher").Info("Connecting GuildVault to discord...")

	token := os.Getenv("GUILDVAULT_TOKEN")
	if token == "" {
		token = config.Path("discord.token").Data().(string)
	}

	discord, err := discordgo.New("Bot " + token)
	if err != nil {
		panic(err)
	}

	discord.Lock()
	discord.Debug = false
	discord.LogLevel = discordgo.LogInformational
	discord.StateEnabled = true
	discord.Unlock()

	discord.AddHandler(BotOnReady)
	discord.AddHandler(BotOnMessageCreate)
	discord.AddHandlerOnce(metrics.OnReady)
	discord.AddHandler(metrics.OnMessageCreate)

	// Connect to discord
	err = discord.Open()
	if err != nil {
		raven.CaptureErrorAndWait(err, nil)
		panic(err)
	}

	// Wait for the os to signal a shutdown
	channel := make(chan os.Signal, 1)
	signal.Notify(channel, os.Interrupt, syscall.SIGTERM)
	<-channel

	log.WithField("module", "launcher").Info("Shutting down...")

	discord.Close()
}
