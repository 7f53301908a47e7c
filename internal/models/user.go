package models

import (
	"time"
)

type User struct {
	UID          string    `firestore:"uid" gorm:"primaryKey;type:varchar(128)" json:"uid"`
	Email        string    `firestore:"email" gorm:"index" json:"email"`
	DisplayName  string    `firestore:"displayName" json:"displayName,omitempty"`
	Provider     string    `firestore:"provider" json:"provider"`                   // identity provider that issued the uid
	MigratedFrom string    `firestore:"migratedFrom" json:"migratedFrom,omitempty"` // legacy uid whose records were moved here
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type UserSetting struct {
	UserID           string    `firestore:"userId" gorm:"primaryKey;type:varchar(128)" json:"userId"`
	IgnoredAddresses []string  `firestore:"ignoredAddresses" gorm:"serializer:json" json:"ignoredAddresses"`
	UpdatedAt        time.Time `firestore:"updatedAt" json:"updatedAt"`
}
