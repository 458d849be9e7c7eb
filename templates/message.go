package templates

import (
	"encoding/json"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// MessageHistoryLimit is how many trailing messages are captured per channel
const MessageHistoryLimit = 3

// Message is the replayable snapshot of one channel message. It carries no
// live identifiers, only what a webhook needs to impersonate the author.
type Message struct {
	Author          string
	AuthorAvatarURL string
	Content         string
	Embeds          []*discordgo.MessageEmbed
	Attachments     []string
}

type messageDocument struct {
	Author          string                    `json:"author"`
	AuthorAvatarURL string                    `json:"author_avatar_url"`
	Content         string                    `json:"content"`
	Embeds          []*discordgo.MessageEmbed `json:"embeds"`
	Attachments     []string                  `json:"attachments"`
}

// MessageFromDiscord snapshots one live message
func MessageFromDiscord(msg *discordgo.Message) *Message {
	attachments := make([]string, 0, len(msg.Attachments))
	for _, attachment := range msg.Attachments {
		attachments = append(attachments, attachment.URL)
	}

	return &Message{
		Author:          msg.Author.Username + "#" + msg.Author.Discriminator,
		AuthorAvatarURL: msg.Author.AvatarURL(""),
		Content:         msg.Content,
		Embeds:          msg.Embeds,
		Attachments:     attachments,
	}
}

// messagesFromHistory converts a newest-first history fetch into an
// oldest-first snapshot list
func messagesFromHistory(history []*discordgo.Message) []*Message {
	messages := make([]*Message, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		messages = append(messages, MessageFromDiscord(history[i]))
	}

	return messages
}

// WebhookParams builds the webhook payload replaying this message. Attachment
// URLs are appended to the content, they are not re-uploaded.
func (m *Message) WebhookParams() *discordgo.WebhookParams {
	content := m.Content
	if len(m.Attachments) > 0 {
		if content != "" {
			content += "\n"
		}
		content += strings.Join(m.Attachments, "\n")
	}

	return &discordgo.WebhookParams{
		Content:   content,
		Username:  m.Author,
		AvatarURL: m.AuthorAvatarURL,
		Embeds:    m.Embeds,
	}
}

func (m *Message) document() messageDocument {
	embeds := m.Embeds
	if embeds == nil {
		embeds = make([]*discordgo.MessageEmbed, 0)
	}
	attachments := m.Attachments
	if attachments == nil {
		attachments = make([]string, 0)
	}

	return messageDocument{
		Author:          m.Author,
		AuthorAvatarURL: m.AuthorAvatarURL,
		Content:         m.Content,
		Embeds:          embeds,
		Attachments:     attachments,
	}
}

func messageFromDocument(doc []byte) (*Message, error) {
	_, err := documentFields(doc, "author", "author_avatar_url", "content", "embeds", "attachments")
	if err != nil {
		return nil, err
	}

	var document messageDocument
	if err := json.Unmarshal(doc, &document); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	return &Message{
		Author:          document.Author,
		AuthorAvatarURL: document.AuthorAvatarURL,
		Content:         document.Content,
		Embeds:          document.Embeds,
		Attachments:     document.Attachments,
	}, nil
}
