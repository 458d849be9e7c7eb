package models

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

const (
	BackupTable MongoDbCollection = "backups"

	// resolves to []BackupEntry
	BackupListCacheKey = "guildvault:backups:all"
)

// BackupEntry is one stored server template. Document holds the serialized
// template verbatim, so that storage round-trips are byte-exact.
type BackupEntry struct {
	ID         bson.ObjectId `bson:"_id,omitempty"`
	TemplateID string
	GuildID    string
	OwnerID    string
	CreatedAt  time.Time
	Document   []byte
}
