package templates

import (
	"strconv"

	"github.com/mirelle/guildvault/cache"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func init() {
	cache.SetLogger(logrus.New())
}

// fakeGuild is an in-memory GuildClient used to exercise capture and apply
// without a live gateway
type fakeGuild struct {
	guildID string
	nextID  int

	roles    []*discordgo.Role
	channels []*discordgo.Channel
	messages map[string][]*discordgo.Message

	webhookSends map[string][]*discordgo.WebhookParams

	botUser *discordgo.User

	// when set, the named call fails once it has been made this many times
	failCall  string
	failAfter int
	calls     map[string]int
}

func newFakeGuild(guildID string) *fakeGuild {
	return &fakeGuild{
		guildID:      guildID,
		messages:     make(map[string][]*discordgo.Message),
		webhookSends: make(map[string][]*discordgo.WebhookParams),
		botUser:      &discordgo.User{ID: "1", Username: "guildvault"},
		calls:        make(map[string]int),
	}
}

func (f *fakeGuild) id() string {
	f.nextID++
	return strconv.Itoa(1000 + f.nextID)
}

func (f *fakeGuild) fail(call string) error {
	f.calls[call]++
	if f.failCall == call && f.calls[call] > f.failAfter {
		return errors.New("rate limited")
	}

	return nil
}

func (f *fakeGuild) addRole(name string, position int, managed bool) *discordgo.Role {
	role := &discordgo.Role{
		ID:       f.id(),
		Name:     name,
		Position: position,
		Managed:  managed,
	}
	f.roles = append(f.roles, role)

	return role
}

func (f *fakeGuild) addEveryoneRole() *discordgo.Role {
	role := &discordgo.Role{ID: f.guildID, Name: "@everyone"}
	f.roles = append(f.roles, role)

	return role
}

func (f *fakeGuild) addChannel(name string, kind discordgo.ChannelType, position int, parentID string) *discordgo.Channel {
	channel := &discordgo.Channel{
		ID:       f.id(),
		GuildID:  f.guildID,
		Name:     name,
		Type:     kind,
		Position: position,
		ParentID: parentID,
	}
	f.channels = append(f.channels, channel)

	return channel
}

func (f *fakeGuild) addMessage(channelID, author, content string) {
	f.messages[channelID] = append([]*discordgo.Message{{
		Content: content,
		Author:  &discordgo.User{Username: author, Discriminator: "0001"},
	}}, f.messages[channelID]...)
}

func (f *fakeGuild) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	roles := make([]*discordgo.Role, len(f.roles))
	copy(roles, f.roles)

	return roles, nil
}

func (f *fakeGuild) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	channels := make([]*discordgo.Channel, len(f.channels))
	copy(channels, f.channels)

	return channels, nil
}

func (f *fakeGuild) ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	history := f.messages[channelID]
	if len(history) > limit {
		history = history[:limit]
	}

	return history, nil
}

func (f *fakeGuild) CreateRole(guildID string, data RoleCreate) (*discordgo.Role, error) {
	if err := f.fail("CreateRole"); err != nil {
		return nil, err
	}

	role := &discordgo.Role{
		ID:          f.id(),
		Name:        data.Name,
		Color:       data.Color,
		Hoist:       data.Hoist,
		Permissions: data.Permissions,
		Mentionable: data.Mentionable,
	}
	f.roles = append(f.roles, role)

	return role, nil
}

func (f *fakeGuild) DeleteRole(guildID, roleID string) error {
	if err := f.fail("DeleteRole"); err != nil {
		return err
	}

	for i, role := range f.roles {
		if role.ID == roleID {
			f.roles = append(f.roles[:i], f.roles[i+1:]...)
			return nil
		}
	}

	return errors.New("unknown role")
}

func (f *fakeGuild) CreateChannel(guildID string, data ChannelCreate) (*discordgo.Channel, error) {
	if err := f.fail("CreateChannel"); err != nil {
		return nil, err
	}

	kind := discordgo.ChannelTypeGuildText
	switch data.Kind {
	case ChannelVoice:
		kind = discordgo.ChannelTypeGuildVoice
	case channelCategory:
		kind = discordgo.ChannelTypeGuildCategory
	}

	channel := &discordgo.Channel{
		ID:                   f.id(),
		GuildID:              guildID,
		Name:                 data.Name,
		Topic:                data.Topic,
		Type:                 kind,
		Position:             data.Position,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.Overwrites,
	}
	f.channels = append(f.channels, channel)

	return channel, nil
}

func (f *fakeGuild) DeleteChannel(channelID string) error {
	if err := f.fail("DeleteChannel"); err != nil {
		return err
	}

	for i, channel := range f.channels {
		if channel.ID == channelID {
			f.channels = append(f.channels[:i], f.channels[i+1:]...)
			return nil
		}
	}

	return errors.New("unknown channel")
}

func (f *fakeGuild) SendWebhookMessage(guildID, channelID string, params *discordgo.WebhookParams) error {
	if err := f.fail("SendWebhookMessage"); err != nil {
		return err
	}

	f.webhookSends[channelID] = append(f.webhookSends[channelID], params)

	return nil
}

func (f *fakeGuild) BotMember(guildID string) (*discordgo.Member, error) {
	return &discordgo.Member{User: f.botUser}, nil
}

func (f *fakeGuild) AddMemberRole(guildID, userID, roleID string) error {
	return nil
}

func (f *fakeGuild) findChannel(name string) *discordgo.Channel {
	for _, channel := range f.channels {
		if channel.Name == name {
			return channel
		}
	}

	return nil
}

func (f *fakeGuild) findRole(name string) *discordgo.Role {
	for _, role := range f.roles {
		if role.Name == name {
			return role
		}
	}

	return nil
}
