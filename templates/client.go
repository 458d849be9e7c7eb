package templates

import "github.com/bwmarrin/discordgo"

// RoleCreate is the data for one role creation call
type RoleCreate struct {
	Name        string
	Color       int
	Hoist       bool
	Permissions int
	Mentionable bool
}

// ChannelCreate is the data for one channel or category creation call
type ChannelCreate struct {
	Name       string
	Topic      string
	Kind       ChannelKind
	ParentID   string
	Position   int
	Overwrites []*discordgo.PermissionOverwrite
}

// GuildClient is the slice of the platform the template engine talks to.
// Every call is a strictly sequential suspension point, the engine issues no
// concurrent platform calls within one capture or restoration run.
type GuildClient interface {
	GuildRoles(guildID string) ([]*discordgo.Role, error)
	GuildChannels(guildID string) ([]*discordgo.Channel, error)

	// ChannelMessages fetches up to $limit messages, newest first
	ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error)

	CreateRole(guildID string, data RoleCreate) (*discordgo.Role, error)
	DeleteRole(guildID, roleID string) error

	CreateChannel(guildID string, data ChannelCreate) (*discordgo.Channel, error)
	DeleteChannel(channelID string) error

	// SendWebhookMessage posts through a channel-scoped webhook, creating
	// one if the channel has none yet
	SendWebhookMessage(guildID, channelID string, params *discordgo.WebhookParams) error

	BotMember(guildID string) (*discordgo.Member, error)
	AddMemberRole(guildID, userID, roleID string) error
}
