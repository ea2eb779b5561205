package utils

import (
	"sync"
	"time"
)

var (
	punishLocks = make(map[string]time.Time)
	punishMutex = &sync.Mutex{}
)

const punishLockDuration = 10 * time.Second

// CheckAndSetPunishLock guards against the same (guild, user) pair being
// punished twice in quick succession, e.g. two moderators reacting to
// the same message. Returns true and takes the lock when free.
func CheckAndSetPunishLock(guildID, userID string) bool {
	punishMutex.Lock()
	defer punishMutex.Unlock()

	key := guildID + ":" + userID
	if lastPunishTime, ok := punishLocks[key]; ok {
		if time.Since(lastPunishTime) < punishLockDuration {
			return false
		}
	}

	punishLocks[key] = time.Now()
	return true
}
