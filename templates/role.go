package templates

import (
	"encoding/json"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// Role is the snapshot of one guild role's display attributes and ordering
type Role struct {
	Name        string
	Color       int
	Hoist       bool
	Permissions int
	Mentionable bool
	IsEveryone  bool
	Position    int
}

type roleDocument struct {
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Hoist       bool   `json:"hoist"`
	Permissions int    `json:"permissions"`
	Mentionable bool   `json:"mentionable"`
	IsEveryone  bool   `json:"is_everyone"`
	Position    int    `json:"position"`
}

// RoleIsStorable reports whether a live role survives capture. Platform
// managed roles (bots, integrations, boosters) and @everyone do not.
func RoleIsStorable(role *discordgo.Role, guildID string) bool {
	return !role.Managed && role.ID != guildID
}

// RoleFromDiscord snapshots one live role
func RoleFromDiscord(role *discordgo.Role, guildID string) *Role {
	return &Role{
		Name:        role.Name,
		Color:       role.Color,
		Hoist:       role.Hoist,
		Permissions: role.Permissions,
		Mentionable: role.Mentionable,
		IsEveryone:  role.ID == guildID,
		Position:    role.Position,
	}
}

func (r *Role) document() roleDocument {
	return roleDocument(*r)
}

func roleFromDocument(doc []byte) (*Role, error) {
	_, err := documentFields(doc, "name", "color", "hoist", "permissions", "mentionable", "is_everyone", "position")
	if err != nil {
		return nil, err
	}

	var document roleDocument
	if err := json.Unmarshal(doc, &document); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplateDocument, err.Error())
	}

	role := Role(document)
	return &role, nil
}
