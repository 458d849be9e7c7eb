package templates

import (
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// tri-state of one permission flag inside an overwrite
const (
	OverwriteAllow = "allow"
	OverwriteDeny  = "deny"
	OverwriteUnset = "unset"
)

// Overwrite maps a permission flag name to its tri-state value
type Overwrite map[string]string

// OverwriteSet maps a role display name to its overwrite. Names are used as
// keys because role ids are not stable across guilds.
type OverwriteSet map[string]Overwrite

// permissionFlags maps serialized flag names to their permission bits. The
// names match the wire format of the stored documents.
var permissionFlags = map[string]int{
	"create_instant_invite": discordgo.PermissionCreateInstantInvite,
	"kick_members":          discordgo.PermissionKickMembers,
	"ban_members":           discordgo.PermissionBanMembers,
	"administrator":         discordgo.PermissionAdministrator,
	"manage_channels":       discordgo.PermissionManageChannels,
	"manage_guild":          discordgo.PermissionManageServer,
	"add_reactions":         discordgo.PermissionAddReactions,
	"view_audit_log":        discordgo.PermissionViewAuditLogs,
	"read_messages":         discordgo.PermissionReadMessages,
	"send_messages":         discordgo.PermissionSendMessages,
	"send_tts_messages":     discordgo.PermissionSendTTSMessages,
	"manage_messages":       discordgo.PermissionManageMessages,
	"embed_links":           discordgo.PermissionEmbedLinks,
	"attach_files":          discordgo.PermissionAttachFiles,
	"read_message_history":  discordgo.PermissionReadMessageHistory,
	"mention_everyone":      discordgo.PermissionMentionEveryone,
	"external_emojis":       discordgo.PermissionUseExternalEmojis,
	"connect":               discordgo.PermissionVoiceConnect,
	"speak":                 discordgo.PermissionVoiceSpeak,
	"mute_members":          discordgo.PermissionVoiceMuteMembers,
	"deafen_members":        discordgo.PermissionVoiceDeafenMembers,
	"move_members":          discordgo.PermissionVoiceMoveMembers,
	"use_voice_activation":  discordgo.PermissionVoiceUseVAD,
	"change_nickname":       discordgo.PermissionChangeNickname,
	"manage_nicknames":      discordgo.PermissionManageNicknames,
	"manage_roles":          discordgo.PermissionManageRoles,
	"manage_webhooks":       discordgo.PermissionManageWebhooks,
	"manage_emojis":         discordgo.PermissionManageEmojis,
}

// EncodeOverwrites converts live channel overwrites into an OverwriteSet.
// Member-scoped overwrites are dropped, role-scoped ones are keyed by the
// role's display name looked up in $roleNames (role id to name).
func EncodeOverwrites(liveOverwrites []*discordgo.PermissionOverwrite, roleNames map[string]string) OverwriteSet {
	set := make(OverwriteSet)

	for _, liveOverwrite := range liveOverwrites {
		if liveOverwrite.Type != "role" {
			continue
		}

		name, ok := roleNames[liveOverwrite.ID]
		if !ok {
			continue
		}

		overwrite := make(Overwrite, len(permissionFlags))
		for flag, bit := range permissionFlags {
			switch {
			case liveOverwrite.Allow&bit == bit:
				overwrite[flag] = OverwriteAllow
			case liveOverwrite.Deny&bit == bit:
				overwrite[flag] = OverwriteDeny
			default:
				overwrite[flag] = OverwriteUnset
			}
		}

		set[name] = overwrite
	}

	return set
}

// AllowDeny decodes the overwrite back into allow/deny permission bitmasks.
// Unknown flag names are skipped, out-of-domain values are an error.
func (o Overwrite) AllowDeny() (allow int, deny int, err error) {
	for flag, state := range o {
		bit, known := permissionFlags[flag]
		if !known {
			continue
		}

		switch state {
		case OverwriteAllow:
			allow |= bit
		case OverwriteDeny:
			deny |= bit
		case OverwriteUnset:
		default:
			return 0, 0, errors.Wrapf(ErrInvalidOverwriteData, "flag %q has value %q", flag, state)
		}
	}

	return allow, deny, nil
}

// ResolveRoles looks up each stored role name in $roles (name to live role,
// built during restoration) and produces overwrites the platform accepts.
// Names without a live role are silently dropped: the original role was
// filtered out at capture or renamed since.
func (s OverwriteSet) ResolveRoles(roles map[string]*discordgo.Role) ([]*discordgo.PermissionOverwrite, error) {
	liveOverwrites := make([]*discordgo.PermissionOverwrite, 0, len(s))

	for name, overwrite := range s {
		role, ok := roles[name]
		if !ok {
			continue
		}

		allow, deny, err := overwrite.AllowDeny()
		if err != nil {
			return nil, err
		}

		liveOverwrites = append(liveOverwrites, &discordgo.PermissionOverwrite{
			ID:    role.ID,
			Type:  "role",
			Allow: allow,
			Deny:  deny,
		})
	}

	return liveOverwrites, nil
}

// overwriteSetFromDocument validates and parses the permissions block of a
// serialized channel or category
func overwriteSetFromDocument(raw map[string]map[string]string) (OverwriteSet, error) {
	set := make(OverwriteSet, len(raw))

	for name, flags := range raw {
		overwrite := make(Overwrite, len(flags))
		for flag, state := range flags {
			switch state {
			case OverwriteAllow, OverwriteDeny, OverwriteUnset:
				overwrite[flag] = state
			default:
				return nil, errors.Wrapf(ErrInvalidOverwriteData, "flag %q has value %q", flag, state)
			}
		}
		set[name] = overwrite
	}

	return set, nil
}
