package templates

import (
	"encoding/json"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// ChannelKind is the serialized channel type discriminant
type ChannelKind string

const (
	ChannelText     ChannelKind = "text"
	ChannelVoice    ChannelKind = "voice"
	channelCategory ChannelKind = "category"
)

// Channel is the snapshot of one text or voice channel
type Channel struct {
	Name         string
	Topic        string
	Kind         ChannelKind
	Overwrites   OverwriteSet
	Position     int
	LastMessages []*Message
}

type channelDocument struct {
	Name         string                       `json:"name"`
	Topic        string                       `json:"topic"`
	Kind         ChannelKind                  `json:"type"`
	Overwrites   map[string]map[string]string `json:"permissions"`
	Position     int                          `json:"position"`
	LastMessages []messageDocument            `json:"last_messages"`
}

// ChannelFromDiscord snapshots one live channel. Text channels additionally
// capture their trailing messages through $client, voice channels never do.
func ChannelFromDiscord(client GuildClient, channel *discordgo.Channel, roleNames map[string]string) (*Channel, error) {
	snapshot := &Channel{
		Name:       channel.Name,
		Topic:      channel.Topic,
		Overwrites: EncodeOverwrites(channel.PermissionOverwrites, roleNames),
		Position:   channel.Position,
	}

	switch channel.Type {
	case discordgo.ChannelTypeGuildVoice:
		snapshot.Kind = ChannelVoice
		snapshot.Topic = ""
	default:
		snapshot.Kind = ChannelText

		history, err := client.ChannelMessages(channel.ID, MessageHistoryLimit)
		if err != nil {
			return nil, err
		}
		snapshot.LastMessages = messagesFromHistory(history)
	}

	return snapshot, nil
}

func (c *Channel) position() int {
	return c.Position
}

func (c *Channel) document() interface{} {
	messages := make([]messageDocument, 0, len(c.LastMessages))
	if c.Kind == ChannelText {
		for _, message := range c.LastMessages {
			messages = append(messages, message.document())
		}
	}

	return channelDocument{
		Name:         c.Name,
		Topic:        c.Topic,
		Kind:         c.Kind,
		Overwrites:   overwriteSetDocument(c.Overwrites),
		Position:     c.Position,
		LastMessages: messages,
	}
}

func channelFromDocument(doc []byte) (*Channel, error) {
	fields, err := documentFields(doc, "name", "topic", "type", "permissions", "position")
	if err != nil {
		return nil, err
	}

	var document channelDocument
	if err := json.Unmarshal(doc, &document); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	if document.Kind != ChannelText && document.Kind != ChannelVoice {
		return nil, errors.Wrapf(ErrInvalidTemplateDocument, "unknown channel type %q", document.Kind)
	}

	overwrites, err := overwriteSetFromDocument(document.Overwrites)
	if err != nil {
		return nil, err
	}

	channel := &Channel{
		Name:       document.Name,
		Topic:      document.Topic,
		Kind:       document.Kind,
		Overwrites: overwrites,
		Position:   document.Position,
	}

	// trailing messages are optional on the wire
	if rawMessages, ok := fields["last_messages"]; ok {
		var docs []json.RawMessage
		if err := json.Unmarshal(rawMessages, &docs); err != nil {
			return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
		}

		for _, rawMessage := range docs {
			message, err := messageFromDocument(rawMessage)
			if err != nil {
				return nil, err
			}
			channel.LastMessages = append(channel.LastMessages, message)
		}
	}

	return channel, nil
}

// overwriteSetDocument renders an OverwriteSet into its plain serializable form
func overwriteSetDocument(set OverwriteSet) map[string]map[string]string {
	doc := make(map[string]map[string]string, len(set))
	for name, overwrite := range set {
		doc[name] = map[string]string(overwrite)
	}

	return doc
}
