package db

import (
	"time"

	"gorm.io/gorm"
)

type Repositories struct {
	KV        *KVRepository
	UserData  *UserDataRepository
	Reminders *ReminderRepository
}

func NewRepositories(database *gorm.DB, location *time.Location) *Repositories {
	kv := NewKVRepository(database)
	return &Repositories{
		KV:        kv,
		UserData:  NewUserDataRepository(kv, location),
		Reminders: NewReminderRepository(kv),
	}
}
