package templates

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"sort"
	"time"

	"github.com/mirelle/guildvault/cache"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// node is one entry of the template's channel tree, either a *Category or a
// standalone *Channel
type node interface {
	position() int
	document() interface{}
}

// Template is the serializable snapshot of one guild's roles, channel
// structure and trailing messages. It owns its snapshots exclusively.
type Template struct {
	ID              string
	CreatedAt       time.Time
	OriginalGuildID string
	Owner           string
	Uses            int

	roles []*Role
	nodes []node
}

// ApplyOptions selects between the two observed restoration variants. The
// zero value is the baseline: ascending role creation order, no synthetic
// elevation role.
type ApplyOptions struct {
	// DescendingRoleOrder recreates roles highest position first
	DescendingRoleOrder bool

	// CreateElevationRole additionally creates an administrator role named
	// after the bot and assigns it to the bot after role recreation
	CreateElevationRole bool
}

type templateDocument struct {
	ID              string        `json:"id"`
	CreatedAt       int64         `json:"created_at"`
	OriginalGuildID string        `json:"original_guild_id"`
	Owner           string        `json:"owner"`
	Uses            int           `json:"uses"`
	Roles           []interface{} `json:"roles"`
	Channels        []interface{} `json:"channels"`
}

// newTemplateID generates a short urlsafe token
func newTemplateID() string {
	token := make([]byte, 5)
	if _, err := rand.Read(token); err != nil {
		panic(err)
	}

	return base64.RawURLEncoding.EncodeToString(token)
}

// FromGuild captures a live guild into a fresh template. Categories are
// captured once each, deduplicated by display name; channels without a
// category are captured standalone.
func FromGuild(client GuildClient, guildID string, ownerID string) (*Template, error) {
	template := &Template{
		ID:              newTemplateID(),
		CreatedAt:       time.Now(),
		OriginalGuildID: guildID,
		Owner:           ownerID,
	}

	liveRoles, err := client.GuildRoles(guildID)
	if err != nil {
		return nil, errors.Wrap(err, "capturing roles")
	}

	roleNames := make(map[string]string, len(liveRoles))
	for _, liveRole := range liveRoles {
		roleNames[liveRole.ID] = liveRole.Name

		if RoleIsStorable(liveRole, guildID) {
			template.roles = append(template.roles, RoleFromDiscord(liveRole, guildID))
		}
	}

	liveChannels, err := client.GuildChannels(guildID)
	if err != nil {
		return nil, errors.Wrap(err, "capturing channels")
	}

	liveCategories := make(map[string]*discordgo.Channel)
	for _, liveChannel := range liveChannels {
		if liveChannel.Type == discordgo.ChannelTypeGuildCategory {
			liveCategories[liveChannel.ID] = liveChannel
		}
	}

	var categories []node
	var standalone []node
	captured := make(map[string]bool)

	for _, liveChannel := range liveChannels {
		if liveChannel.Type != discordgo.ChannelTypeGuildText && liveChannel.Type != discordgo.ChannelTypeGuildVoice {
			continue
		}

		if liveChannel.ParentID != "" {
			liveCategory, ok := liveCategories[liveChannel.ParentID]
			if !ok || captured[liveCategory.Name] {
				continue
			}

			category, err := CategoryFromDiscord(client, liveCategory, liveChannels, roleNames)
			if err != nil {
				return nil, errors.Wrap(err, "capturing category")
			}

			captured[liveCategory.Name] = true
			categories = append(categories, category)
			continue
		}

		channel, err := ChannelFromDiscord(client, liveChannel, roleNames)
		if err != nil {
			return nil, errors.Wrap(err, "capturing channel")
		}
		standalone = append(standalone, channel)
	}

	template.nodes = append(categories, standalone...)

	return template, nil
}

// Roles returns the role snapshots sorted by position ascending
func (t *Template) Roles() []*Role {
	roles := make([]*Role, len(t.roles))
	copy(roles, t.roles)

	sort.SliceStable(roles, func(i, j int) bool {
		return roles[i].Position < roles[j].Position
	})

	return roles
}

// Channels partitions the channel tree into categories and standalone
// channels, each sorted by position ascending
func (t *Template) Channels() (categories []*Category, standalone []*Channel) {
	for _, entry := range t.nodes {
		switch entry := entry.(type) {
		case *Category:
			categories = append(categories, entry)
		case *Channel:
			standalone = append(standalone, entry)
		}
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Position < categories[j].Position
	})
	sort.SliceStable(standalone, func(i, j int) bool {
		return standalone[i].Position < standalone[j].Position
	})

	return categories, standalone
}

// NumRoles returns how many role snapshots the template holds
func (t *Template) NumRoles() int {
	return len(t.roles)
}

// NumChannels returns how many top level channel tree entries the template holds
func (t *Template) NumChannels() int {
	return len(t.nodes)
}

// Serialize renders the template into its JSON document
func (t *Template) Serialize() ([]byte, error) {
	document := templateDocument{
		ID:              t.ID,
		CreatedAt:       t.CreatedAt.Unix(),
		OriginalGuildID: t.OriginalGuildID,
		Owner:           t.Owner,
		Uses:            t.Uses,
		Roles:           make([]interface{}, 0, len(t.roles)),
		Channels:        make([]interface{}, 0, len(t.nodes)),
	}

	for _, role := range t.Roles() {
		document.Roles = append(document.Roles, role.document())
	}

	categories, standalone := t.Channels()
	for _, category := range categories {
		document.Channels = append(document.Channels, category.document())
	}
	for _, channel := range standalone {
		document.Channels = append(document.Channels, channel.document())
	}

	return json.Marshal(document)
}

// Deserialize parses a JSON document back into a template, validating the
// presence of required keys at every nesting level
func Deserialize(doc []byte) (*Template, error) {
	fields, err := documentFields(doc, "id", "roles", "channels", "original_guild_id")
	if err != nil {
		return nil, err
	}

	template := &Template{}

	if err := json.Unmarshal(fields["id"], &template.ID); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}
	if template.ID == "" {
		template.ID = newTemplateID()
	}

	template.OriginalGuildID, err = snowflakeField(fields["original_guild_id"])
	if err != nil {
		return nil, err
	}

	if rawOwner, ok := fields["owner"]; ok {
		template.Owner, err = snowflakeField(rawOwner)
		if err != nil {
			return nil, err
		}
	}

	if rawCreatedAt, ok := fields["created_at"]; ok {
		var epoch float64
		if err := json.Unmarshal(rawCreatedAt, &epoch); err != nil {
			return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
		}
		template.CreatedAt = time.Unix(int64(epoch), 0)
	} else {
		template.CreatedAt = time.Now()
	}

	if rawUses, ok := fields["uses"]; ok {
		if err := json.Unmarshal(rawUses, &template.Uses); err != nil {
			return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
		}
	}

	var rawRoles []json.RawMessage
	if err := json.Unmarshal(fields["roles"], &rawRoles); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}
	for _, rawRole := range rawRoles {
		role, err := roleFromDocument(rawRole)
		if err != nil {
			return nil, err
		}
		template.roles = append(template.roles, role)
	}

	var rawChannels []json.RawMessage
	if err := json.Unmarshal(fields["channels"], &rawChannels); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}
	for _, rawChannel := range rawChannels {
		entry, err := nodeFromDocument(rawChannel)
		if err != nil {
			return nil, err
		}
		template.nodes = append(template.nodes, entry)
	}

	return template, nil
}

// nodeFromDocument dispatches on the explicit type discriminant, falling back
// to children-presence for documents written by older exporters
func nodeFromDocument(doc []byte) (node, error) {
	fields, err := documentFields(doc)
	if err != nil {
		return nil, err
	}

	if rawKind, ok := fields["type"]; ok {
		var kind ChannelKind
		if err := json.Unmarshal(rawKind, &kind); err != nil {
			return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
		}

		if kind == channelCategory {
			return categoryFromDocument(doc)
		}
		return channelFromDocument(doc)
	}

	if _, ok := fields["children"]; ok {
		return categoryFromDocument(doc)
	}

	return channelFromDocument(doc)
}

// Apply replays the template onto a live guild: teardown of the existing
// structure, role recreation, then categories, channels and trailing
// messages. Teardown is destructive and has no rollback; a failure partway
// leaves the guild in whatever intermediate state was reached. Only a fully
// successful run counts towards Uses.
func (t *Template) Apply(client GuildClient, guildID string, opts ApplyOptions) error {
	log := cache.GetLogger().WithField("module", "templates")

	// teardown: roles, then categories, then remaining channels
	liveRoles, err := client.GuildRoles(guildID)
	if err != nil {
		return errors.Wrap(err, "teardown")
	}
	for _, liveRole := range liveRoles {
		if !RoleIsStorable(liveRole, guildID) {
			continue
		}
		if err := client.DeleteRole(guildID, liveRole.ID); err != nil {
			return errors.Wrap(err, "teardown")
		}
	}

	liveChannels, err := client.GuildChannels(guildID)
	if err != nil {
		return errors.Wrap(err, "teardown")
	}
	for _, liveChannel := range liveChannels {
		if liveChannel.Type != discordgo.ChannelTypeGuildCategory {
			continue
		}
		if err := client.DeleteChannel(liveChannel.ID); err != nil {
			return errors.Wrap(err, "teardown")
		}
	}
	for _, liveChannel := range liveChannels {
		if liveChannel.Type == discordgo.ChannelTypeGuildCategory {
			continue
		}
		if err := client.DeleteChannel(liveChannel.ID); err != nil {
			return errors.Wrap(err, "teardown")
		}
	}

	log.Infof("tore down guild #%s, recreating %d roles and %d channel entries",
		guildID, len(t.roles), len(t.nodes))

	// role recreation, recording name to live role. On duplicate names the
	// last created role wins.
	roles := t.Roles()
	if opts.DescendingRoleOrder {
		for i, j := 0, len(roles)-1; i < j; i, j = i+1, j-1 {
			roles[i], roles[j] = roles[j], roles[i]
		}
	}

	createdRoles := make(map[string]*discordgo.Role, len(roles))
	for _, role := range roles {
		liveRole, err := client.CreateRole(guildID, RoleCreate{
			Name:        role.Name,
			Color:       role.Color,
			Hoist:       role.Hoist,
			Permissions: role.Permissions,
			Mentionable: role.Mentionable,
		})
		if err != nil {
			return errors.Wrap(err, "recreating roles")
		}
		createdRoles[role.Name] = liveRole
	}

	if opts.CreateElevationRole {
		if err := t.createElevationRole(client, guildID); err != nil {
			return errors.Wrap(err, "recreating roles")
		}
	}

	// structure recreation: categories with their children first, then
	// standalone channels at the guild root
	categories, standalone := t.Channels()

	for _, category := range categories {
		overwrites, err := category.Overwrites.ResolveRoles(createdRoles)
		if err != nil {
			return errors.Wrap(err, "recreating categories")
		}

		liveCategory, err := client.CreateChannel(guildID, ChannelCreate{
			Name:       category.Name,
			Kind:       channelCategory,
			Position:   category.Position,
			Overwrites: overwrites,
		})
		if err != nil {
			return errors.Wrap(err, "recreating categories")
		}

		for _, child := range category.Children() {
			if err := t.restoreChannel(client, guildID, liveCategory.ID, child, createdRoles); err != nil {
				return errors.Wrap(err, "recreating categories")
			}
		}
	}

	for _, channel := range standalone {
		if err := t.restoreChannel(client, guildID, "", channel, createdRoles); err != nil {
			return errors.Wrap(err, "recreating channels")
		}
	}

	t.Uses++

	log.Infof("applied template %s to guild #%s", t.ID, guildID)

	return nil
}

// restoreChannel creates one channel, scoped to $parentID if not empty, and
// replays its trailing messages if it is a text channel
func (t *Template) restoreChannel(client GuildClient, guildID, parentID string, channel *Channel, createdRoles map[string]*discordgo.Role) error {
	overwrites, err := channel.Overwrites.ResolveRoles(createdRoles)
	if err != nil {
		return err
	}

	liveChannel, err := client.CreateChannel(guildID, ChannelCreate{
		Name:       channel.Name,
		Topic:      channel.Topic,
		Kind:       channel.Kind,
		ParentID:   parentID,
		Position:   channel.Position,
		Overwrites: overwrites,
	})
	if err != nil {
		return err
	}

	if channel.Kind != ChannelText {
		return nil
	}

	for _, message := range channel.LastMessages {
		if err := client.SendWebhookMessage(guildID, liveChannel.ID, message.WebhookParams()); err != nil {
			return err
		}
	}

	return nil
}

// createElevationRole puts an administrator role named after the bot on top
// of the recreated role stack and assigns it to the bot
func (t *Template) createElevationRole(client GuildClient, guildID string) error {
	bot, err := client.BotMember(guildID)
	if err != nil {
		return err
	}

	role, err := client.CreateRole(guildID, RoleCreate{
		Name:        bot.User.Username,
		Permissions: discordgo.PermissionAdministrator,
	})
	if err != nil {
		return err
	}

	return client.AddMemberRole(guildID, bot.User.ID, role.ID)
}
