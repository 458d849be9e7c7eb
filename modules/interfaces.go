package modules

import "github.com/bwmarrin/discordgo"

type Plugin interface {
	Commands() []string

	Init(session *discordgo.Session)

	Action(
		command string,
		content string,
		msg *discordgo.Message,
		session *discordgo.Session,
	)
}
