package modules

import (
	"github.com/mirelle/guildvault/modules/plugins"
)

var (
	pluginCache map[string]*Plugin

	PluginList = []Plugin{
		&plugins.Ping{},
		&plugins.Backup{},
	}
)
