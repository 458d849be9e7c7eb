package metrics

import (
	"expvar"
	"net/http"
	"runtime"
	"time"

	"github.com/mirelle/guildvault/cache"
	"github.com/mirelle/guildvault/helpers"
	"github.com/bwmarrin/discordgo"
)

var (
	// MessagesReceived counts all ever received messages
	MessagesReceived = expvar.NewInt("messages_received")

	// GuildCount counts all joined guilds
	GuildCount = expvar.NewInt("guild_count")

	// CommandsExecuted increases after each command execution
	CommandsExecuted = expvar.NewInt("commands_executed")

	// BackupsCreated increases after each successful guild capture
	BackupsCreated = expvar.NewInt("backups_created")

	// RestoresExecuted increases after each fully completed restoration
	RestoresExecuted = expvar.NewInt("restores_executed")

	// CoroutineCount counts all running goroutines
	CoroutineCount = expvar.NewInt("coroutine_count")

	// Uptime stores the timestamp of the bot's boot
	Uptime = expvar.NewInt("uptime")
)

// Init starts the expvar http listener
func Init() {
	address := helpers.GetConfig().Path("metrics.address").Data().(string)
	if address == "" {
		return
	}

	cache.GetLogger().WithField("module", "metrics").Info("Listening on " + address)
	Uptime.Set(time.Now().Unix())
	go http.ListenAndServe(address, nil)
}

// OnReady listens for said discord event
func OnReady(session *discordgo.Session, event *discordgo.Ready) {
	go CollectDiscordMetrics(session)
	go CollectRuntimeMetrics()
}

// OnMessageCreate listens for said discord event
func OnMessageCreate(session *discordgo.Session, event *discordgo.MessageCreate) {
	MessagesReceived.Add(1)
}

// CollectDiscordMetrics counts joined guilds
func CollectDiscordMetrics(session *discordgo.Session) {
	for {
		time.Sleep(15 * time.Second)

		session.State.RLock()
		GuildCount.Set(int64(len(session.State.Guilds)))
		session.State.RUnlock()
	}
}

// CollectRuntimeMetrics counts running goroutines
func CollectRuntimeMetrics() {
	for {
		time.Sleep(15 * time.Second)

		CoroutineCount.Set(int64(runtime.NumGoroutine()))
	}
}
