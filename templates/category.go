package templates

import (
	"encoding/json"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// Category is the snapshot of one channel category and its children
type Category struct {
	Name       string
	Position   int
	Overwrites OverwriteSet
	children   []*Channel
}

type categoryDocument struct {
	Name       string                       `json:"name"`
	Kind       ChannelKind                  `json:"type"`
	Position   int                          `json:"position"`
	Children   []interface{}                `json:"children"`
	Overwrites map[string]map[string]string `json:"permissions"`
}

// CategoryFromDiscord snapshots a live category and all of its child
// channels. $siblings is the guild's full channel list used to find the
// children, $roleNames resolves overwrite role ids to names.
func CategoryFromDiscord(client GuildClient, category *discordgo.Channel, siblings []*discordgo.Channel, roleNames map[string]string) (*Category, error) {
	snapshot := &Category{
		Name:       category.Name,
		Position:   category.Position,
		Overwrites: EncodeOverwrites(category.PermissionOverwrites, roleNames),
	}

	for _, sibling := range siblings {
		if sibling.ParentID != category.ID {
			continue
		}
		if sibling.Type != discordgo.ChannelTypeGuildText && sibling.Type != discordgo.ChannelTypeGuildVoice {
			continue
		}

		child, err := ChannelFromDiscord(client, sibling, roleNames)
		if err != nil {
			return nil, err
		}
		snapshot.children = append(snapshot.children, child)
	}

	return snapshot, nil
}

// Children returns the child channels sorted by position ascending
func (c *Category) Children() []*Channel {
	children := make([]*Channel, len(c.children))
	copy(children, c.children)

	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Position < children[j].Position
	})

	return children
}

func (c *Category) position() int {
	return c.Position
}

func (c *Category) document() interface{} {
	children := make([]interface{}, 0, len(c.children))
	for _, child := range c.Children() {
		children = append(children, child.document())
	}

	return categoryDocument{
		Name:       c.Name,
		Kind:       channelCategory,
		Position:   c.Position,
		Children:   children,
		Overwrites: overwriteSetDocument(c.Overwrites),
	}
}

func categoryFromDocument(doc []byte) (*Category, error) {
	fields, err := documentFields(doc, "name", "children", "permissions")
	if err != nil {
		return nil, err
	}

	var rawOverwrites map[string]map[string]string
	if err := json.Unmarshal(fields["permissions"], &rawOverwrites); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	overwrites, err := overwriteSetFromDocument(rawOverwrites)
	if err != nil {
		return nil, err
	}

	category := &Category{
		Overwrites: overwrites,
	}

	if err := json.Unmarshal(fields["name"], &category.Name); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	// position is absent in documents written by older exporters
	if rawPosition, ok := fields["position"]; ok {
		if err := json.Unmarshal(rawPosition, &category.Position); err != nil {
			return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
		}
	}

	var children []json.RawMessage
	if err := json.Unmarshal(fields["children"], &children); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	for _, rawChild := range children {
		child, err := channelFromDocument(rawChild)
		if err != nil {
			return nil, err
		}
		category.children = append(category.children, child)
	}

	return category, nil
}
