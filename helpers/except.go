// Except.go: Contains functions to make handling panics less PITA

package helpers

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/mirelle/guildvault/cache"
	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/raven-go"
)

// RecoverDiscord recover()s and sends a message to discord
func RecoverDiscord(msg *discordgo.Message) {
	err := recover()
	if err != nil {
		SendError(msg, err)
	}
}

// Recover recover()s and prints the error to console
func Recover() {
	err := recover()
	if err != nil {
		fmt.Printf("%#v\n", err)

		raven.CaptureError(fmt.Errorf("%#v", err), map[string]string{})
	}
}

// Relax is a helper to reduce if-checks if panicking is allowed
// If $err is nil this is a no-op. Panics otherwise.
func Relax(err error) {
	if err != nil {
		if DEBUG_MODE == true {
			fmt.Printf("%#v\n", err)
		}
		panic(err)
	}
}

// RelaxLog logs the error to sentry without panicking
func RelaxLog(err error) {
	if err != nil {
		cache.GetLogger().WithField("module", "except").Error(err.Error())
		raven.CaptureError(err, map[string]string{})
	}
}

// SoftRelax is a softer form of Relax()
// Calls a callback instead of panicking
func SoftRelax(err error, cb Callback) {
	if err != nil {
		cb()
	}
}

// SendError Takes an error and sends it to discord and sentry.io
func SendError(msg *discordgo.Message, err interface{}) {
	if DEBUG_MODE == true {
		buf := make([]byte, 1<<16)
		stackSize := runtime.Stack(buf, false)

		cache.GetSession().ChannelMessageSend(
			msg.ChannelID,
			"Error :frowning:\n```\n"+fmt.Sprintf("%#v\n", err)+fmt.Sprintf("%s\n", string(buf[0:stackSize]))+"\n```",
		)
	} else {
		if errR, ok := err.(*discordgo.RESTError); ok && errR != nil && errR.Message != nil {
			cache.GetSession().ChannelMessageSend(
				msg.ChannelID,
				"Error :frowning:\n```\n"+fmt.Sprintf("%#v", errR.Message.Message)+"\n```",
			)
		} else {
			cache.GetSession().ChannelMessageSend(
				msg.ChannelID,
				"Error :frowning:\n```\n"+fmt.Sprintf("%#v", err)+"\n```",
			)
		}
	}

	raven.SetUserContext(&raven.User{
		ID:       msg.ID,
		Username: msg.Author.Username + "#" + msg.Author.Discriminator,
	})

	raven.CaptureError(fmt.Errorf("%#v", err), map[string]string{
		"ChannelID":       msg.ChannelID,
		"Content":         msg.Content,
		"Timestamp":       string(msg.Timestamp),
		"TTS":             strconv.FormatBool(msg.Tts),
		"MentionEveryone": strconv.FormatBool(msg.MentionEveryone),
		"IsBot":           strconv.FormatBool(msg.Author.Bot),
	})
}
