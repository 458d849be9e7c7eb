package plugins

import (
	"fmt"
	"strings"
	"time"

	"github.com/mirelle/guildvault/cache"
	"github.com/mirelle/guildvault/helpers"
	"github.com/mirelle/guildvault/metrics"
	"github.com/mirelle/guildvault/models"
	"github.com/mirelle/guildvault/templates"
	"github.com/bwmarrin/discordgo"
	humanize "github.com/dustin/go-humanize"
)

// one capture and one restoration allowed per guild per week
const backupCooldown = 7 * 24 * time.Hour

type Backup struct {
	client templates.GuildClient
}

func (b *Backup) Commands() []string {
	return []string{
		"backup",
	}
}

func (b *Backup) Init(session *discordgo.Session) {
	b.client = templates.NewDiscordClient()
}

func (b *Backup) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	channel, err := cache.Channel(msg.ChannelID)
	helpers.Relax(err)
	if channel.GuildID == "" {
		return
	}

	args := strings.Fields(content)
	if len(args) < 1 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	switch args[0] {
	case "create":
		b.actionCreate(msg, channel.GuildID)
	case "list":
		b.actionList(msg)
	case "info":
		b.actionInfo(msg, args[1:])
	case "delete":
		b.actionDelete(msg, args[1:])
	case "restore":
		b.actionRestore(msg, channel.GuildID, args[1:])
	default:
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.invalid"))
	}
}

func (b *Backup) actionCreate(msg *discordgo.Message, guildID string) {
	helpers.RequireAdmin(msg, func() {
		settings, err := helpers.GuildSettingsGet(guildID)
		helpers.Relax(err)

		if !settings.LastBackupAt.IsZero() && time.Since(settings.LastBackupAt) < backupCooldown {
			helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.create-cooldown"))
			return
		}

		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.create-started"))
		cache.GetSession().ChannelTyping(msg.ChannelID)

		template, err := templates.FromGuild(b.client, guildID, msg.Author.ID)
		helpers.Relax(err)

		document, err := template.Serialize()
		helpers.Relax(err)

		err = helpers.BackupAdd(models.BackupEntry{
			TemplateID: template.ID,
			GuildID:    guildID,
			OwnerID:    msg.Author.ID,
			CreatedAt:  template.CreatedAt,
			Document:   document,
		})
		helpers.Relax(err)

		settings.LastBackupAt = time.Now()
		err = helpers.GuildSettingsSet(guildID, settings)
		helpers.Relax(err)

		metrics.BackupsCreated.Add(1)

		_, err = helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.backup.create-success", template.ID))
		helpers.Relax(err)
	})
}

func (b *Backup) actionList(msg *discordgo.Message) {
	entries, err := helpers.BackupList()
	helpers.Relax(err)

	if len(entries) <= 0 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.list-empty"))
		return
	}

	descriptions := make([]string, 0, len(entries))
	for _, entry := range entries {
		template, err := templates.Deserialize(entry.Document)
		if err != nil {
			helpers.RelaxLog(err)
			continue
		}

		descriptions = append(descriptions, fmt.Sprintf(
			"**%s**\nCreated %s\n%d channels and %d roles, used %d times",
			template.ID,
			humanize.Time(template.CreatedAt),
			template.NumChannels(),
			template.NumRoles(),
			template.Uses,
		))
	}

	_, err = helpers.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Title:       helpers.GetText("plugins.backup.list-title"),
		Description: strings.Join(descriptions, "\n\n"),
	})
	helpers.Relax(err)
}

func (b *Backup) actionInfo(msg *discordgo.Message, args []string) {
	if len(args) < 1 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	entry, err := helpers.BackupGet(args[0])
	if helpers.IsMdbNotFound(err) {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.not-found"))
		return
	}
	helpers.Relax(err)

	template, err := templates.Deserialize(entry.Document)
	helpers.Relax(err)

	categories, standalone := template.Channels()

	_, err = helpers.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Title: helpers.GetTextF("plugins.backup.info-title", template.ID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Created", Value: humanize.Time(template.CreatedAt), Inline: true},
			{Name: "Origin Server", Value: template.OriginalGuildID, Inline: true},
			{Name: "Owner", Value: "<@" + entry.OwnerID + ">", Inline: true},
			{Name: "Roles", Value: fmt.Sprintf("%d", template.NumRoles()), Inline: true},
			{Name: "Categories", Value: fmt.Sprintf("%d", len(categories)), Inline: true},
			{Name: "Top Level Channels", Value: fmt.Sprintf("%d", len(standalone)), Inline: true},
			{Name: "Uses", Value: fmt.Sprintf("%d", template.Uses), Inline: true},
		},
	})
	helpers.Relax(err)
}

func (b *Backup) actionDelete(msg *discordgo.Message, args []string) {
	if len(args) < 1 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	entry, err := helpers.BackupGet(args[0])
	if helpers.IsMdbNotFound(err) {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.not-found"))
		return
	}
	helpers.Relax(err)

	if entry.OwnerID != msg.Author.ID {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.delete-not-owner"))
		return
	}

	err = helpers.BackupDelete(entry.TemplateID)
	helpers.Relax(err)

	_, err = helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.delete-success"))
	helpers.Relax(err)
}

func (b *Backup) actionRestore(msg *discordgo.Message, guildID string, args []string) {
	helpers.RequireAdmin(msg, func() {
		if len(args) < 1 {
			helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
			return
		}

		entry, err := helpers.BackupGet(args[0])
		if helpers.IsMdbNotFound(err) {
			helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.not-found"))
			return
		}
		helpers.Relax(err)

		settings, err := helpers.GuildSettingsGet(guildID)
		helpers.Relax(err)

		if !settings.LastRestoreAt.IsZero() && time.Since(settings.LastRestoreAt) < backupCooldown {
			helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.restore-cooldown"))
			return
		}

		template, err := templates.Deserialize(entry.Document)
		helpers.Relax(err)

		if !helpers.ConfirmEmbed(
			msg.ChannelID, msg.Author,
			helpers.GetTextF("plugins.backup.restore-confirm", template.ID),
			"✅", "🚫",
		) {
			return
		}

		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.restore-started"))
		cache.GetSession().ChannelTyping(msg.ChannelID)

		err = template.Apply(b.client, guildID, restoreOptions())
		if err != nil {
			// teardown may already have happened, the guild is left in
			// whatever intermediate state was reached
			helpers.RelaxLog(err)
			helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.backup.restore-failed"))
			return
		}

		document, err := template.Serialize()
		helpers.Relax(err)
		err = helpers.BackupSetDocument(template.ID, document)
		helpers.Relax(err)

		settings.LastRestoreAt = time.Now()
		err = helpers.GuildSettingsSet(guildID, settings)
		helpers.Relax(err)

		metrics.RestoresExecuted.Add(1)

		// the channel the command came from is gone after a restore, tell
		// the first restored text channel instead
		liveChannels, err := b.client.GuildChannels(guildID)
		if err != nil {
			helpers.RelaxLog(err)
			return
		}
		for _, liveChannel := range liveChannels {
			if liveChannel.Type == discordgo.ChannelTypeGuildText {
				helpers.SendMessage(liveChannel.ID, helpers.GetText("plugins.backup.restore-success"))
				break
			}
		}
	})
}

// restoreOptions reads the restoration variant knobs from the bot config
func restoreOptions() (opts templates.ApplyOptions) {
	config := helpers.GetConfig()

	if config.ExistsP("restore.descending_roles") {
		opts.DescendingRoleOrder = config.Path("restore.descending_roles").Data().(bool)
	}
	if config.ExistsP("restore.elevation_role") {
		opts.CreateElevationRole = config.Path("restore.elevation_role").Data().(bool)
	}

	return opts
}
