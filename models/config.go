package models

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

const (
	GuildConfigTable MongoDbCollection = "guild_configs"
)

type Config struct {
	ID      bson.ObjectId `bson:"_id,omitempty"`
	GuildID string

	Prefix string

	// cooldown stamps for the backup plugin, zero value means never used
	LastBackupAt  time.Time
	LastRestoreAt time.Time
}

func (c Config) Default(guildID string) Config {
	return Config{
		GuildID: guildID,

		Prefix: "%",
	}
}
