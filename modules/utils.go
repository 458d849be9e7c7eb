package modules

import (
	"fmt"

	"github.com/mirelle/guildvault/cache"
	"github.com/mirelle/guildvault/helpers"
	"github.com/mirelle/guildvault/metrics"
	"github.com/bwmarrin/discordgo"
)

// Init warms the plugin cache and initializes the plugins
func Init(session *discordgo.Session) {
	checkDuplicateCommands()

	pluginCache = make(map[string]*Plugin)

	for i := 0; i < len(PluginList); i++ {
		ref := &PluginList[i]

		listeners := ""
		for _, cmd := range (*ref).Commands() {
			pluginCache[cmd] = ref
			listeners += cmd + " "
		}

		cache.GetLogger().WithField("module", "modules").Infof(
			"[PLUG] %s reacts to [ %s]", helpers.Typeof(*ref), listeners)

		(*ref).Init(session)
	}
}

// CallBotPlugin invokes the plugin registered for $command, if any
func CallBotPlugin(command string, content string, msg *discordgo.Message) {
	if ref, ok := pluginCache[command]; ok {
		metrics.CommandsExecuted.Add(1)
		go safePluginCall(command, content, msg, *ref)
	}
}

func safePluginCall(command string, content string, msg *discordgo.Message, plugin Plugin) {
	defer helpers.RecoverDiscord(msg)

	plugin.Action(command, content, msg, cache.GetSession())
}

func checkDuplicateCommands() {
	cmds := make(map[string]string)

	for _, plugin := range PluginList {
		name := helpers.Typeof(plugin)

		for _, cmd := range plugin.Commands() {
			if occupiedBy, ok := cmds[cmd]; ok {
				panic(fmt.Sprintf("Failed to load %s because %s was already registered by %s", name, cmd, occupiedBy))
			}

			cmds[cmd] = name
		}
	}
}
