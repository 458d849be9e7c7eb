package helpers

import (
	"time"

	rediscache "github.com/go-redis/cache"
	"github.com/mirelle/guildvault/cache"
	"github.com/mirelle/guildvault/models"
	"github.com/globalsign/mgo/bson"
)

// BackupAdd stores a new backup entry
func BackupAdd(entry models.BackupEntry) (err error) {
	_, err = MDbInsert(models.BackupTable, entry)
	if err != nil {
		return err
	}

	FlushBackupListCache()
	return nil
}

// BackupGet returns the backup entry with the given template id
func BackupGet(templateID string) (entry models.BackupEntry, err error) {
	err = MdbOne(
		MdbCollection(models.BackupTable).Find(bson.M{"templateid": templateID}),
		&entry,
	)

	return entry, err
}

// BackupSetDocument replaces the stored document of a backup entry
func BackupSetDocument(templateID string, document []byte) (err error) {
	entry, err := BackupGet(templateID)
	if err != nil {
		return err
	}

	entry.Document = document
	err = MDbUpdate(models.BackupTable, entry.ID, entry)
	if err != nil {
		return err
	}

	FlushBackupListCache()
	return nil
}

// BackupDelete removes a backup entry
func BackupDelete(templateID string) (err error) {
	err = MdbDeleteQuery(models.BackupTable, bson.M{"templateid": templateID})
	if err != nil {
		return err
	}

	FlushBackupListCache()
	return nil
}

// BackupList returns all stored backup entries, cached in redis for a short time
func BackupList() (entries []models.BackupEntry, err error) {
	codec := cache.GetRedisCacheCodec()

	if err = codec.Get(models.BackupListCacheKey, &entries); err == nil {
		return entries, nil
	}

	err = MdbIter(MdbCollection(models.BackupTable).Find(nil).Sort("createdat")).All(&entries)
	if err != nil {
		return nil, err
	}

	err = codec.Set(&rediscache.Item{
		Key:        models.BackupListCacheKey,
		Object:     entries,
		Expiration: time.Minute * 5,
	})
	RelaxLog(err)

	return entries, nil
}

// FlushBackupListCache drops the cached backup list
func FlushBackupListCache() {
	err := cache.GetRedisCacheCodec().Delete(models.BackupListCacheKey)
	if err != nil && err != rediscache.ErrCacheMiss {
		RelaxLog(err)
	}
}
