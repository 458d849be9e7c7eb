package cache

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// How long a cached channel pointer is valid (seconds)
var channelTimeout int64 = 15

var channelMutex = sync.Mutex{}

// Maps channel-id's to channel pointers
var channels = make(map[string]*discordgo.Channel)

// Maps channel-id's to unix timestamps
var channelMeta = make(map[string]int64)

func updateChannel(id string) error {
	channel, err := GetSession().Channel(id)
	if err != nil {
		return err
	}

	channelMutex.Lock()
	channels[id] = channel
	channelMeta[id] = time.Now().Unix()
	channelMutex.Unlock()

	return nil
}

// Channel returns a cached channel pointer, requesting it if missing or stale
func Channel(id string) (*discordgo.Channel, error) {
	channelMutex.Lock()
	cached := channels[id]
	age := time.Now().Unix() - channelMeta[id]
	channelMutex.Unlock()

	if cached == nil || age > channelTimeout {
		if err := updateChannel(id); err != nil {
			return nil, err
		}
	}

	channelMutex.Lock()
	defer channelMutex.Unlock()

	return channels[id], nil
}
