package templates

import (
	"github.com/mirelle/guildvault/cache"
	"github.com/mirelle/guildvault/helpers"
	"github.com/bwmarrin/discordgo"
)

// discordClient implements GuildClient against the shared discordgo session
type discordClient struct{}

// NewDiscordClient returns a GuildClient backed by cache.GetSession()
func NewDiscordClient() GuildClient {
	return &discordClient{}
}

func (c *discordClient) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	return cache.GetSession().GuildRoles(guildID)
}

func (c *discordClient) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	return cache.GetSession().GuildChannels(guildID)
}

func (c *discordClient) ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	return cache.GetSession().ChannelMessages(channelID, limit, "", "", "")
}

func (c *discordClient) CreateRole(guildID string, data RoleCreate) (*discordgo.Role, error) {
	role, err := cache.GetSession().GuildRoleCreate(guildID)
	if err != nil {
		return nil, err
	}

	return cache.GetSession().GuildRoleEdit(
		guildID, role.ID,
		data.Name, data.Color, data.Hoist, data.Permissions, data.Mentionable,
	)
}

func (c *discordClient) DeleteRole(guildID, roleID string) error {
	return cache.GetSession().GuildRoleDelete(guildID, roleID)
}

func (c *discordClient) CreateChannel(guildID string, data ChannelCreate) (*discordgo.Channel, error) {
	kind := discordgo.ChannelTypeGuildText
	switch data.Kind {
	case ChannelVoice:
		kind = discordgo.ChannelTypeGuildVoice
	case channelCategory:
		kind = discordgo.ChannelTypeGuildCategory
	}

	channel, err := cache.GetSession().GuildChannelCreate(guildID, data.Name, kind)
	if err != nil {
		return nil, err
	}

	edit := &discordgo.ChannelEdit{
		Position:             data.Position,
		PermissionOverwrites: data.Overwrites,
		ParentID:             data.ParentID,
	}
	if data.Kind == ChannelText {
		edit.Topic = data.Topic
	}

	return cache.GetSession().ChannelEditComplex(channel.ID, edit)
}

func (c *discordClient) DeleteChannel(channelID string) error {
	_, err := cache.GetSession().ChannelDelete(channelID)
	return err
}

func (c *discordClient) SendWebhookMessage(guildID, channelID string, params *discordgo.WebhookParams) error {
	webhooks, err := helpers.GetWebhooks(guildID, channelID, 1)
	if err != nil {
		return err
	}

	_, err = helpers.WebhookExecuteWithResult(webhooks[0].ID, webhooks[0].Token, params)
	return err
}

func (c *discordClient) BotMember(guildID string) (*discordgo.Member, error) {
	return cache.GetSession().GuildMember(guildID, cache.GetSession().State.User.ID)
}

func (c *discordClient) AddMemberRole(guildID, userID, roleID string) error {
	return cache.GetSession().GuildMemberRoleAdd(guildID, userID, roleID)
}
