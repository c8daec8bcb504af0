package models

import "time"

// Link représente un lien raccourci dans la base de données.
// ClickCount est le compteur agrégé de redirections, incrémenté de façon
// atomique côté base. CreatedBy est la clé opaque du client créateur
// (adresse IP côté HTTP, "cli" côté ligne de commande).
type Link struct {
	ID         uint      `gorm:"primaryKey"`
	ShortCode  string    `gorm:"uniqueIndex;size:16;not null"`
	LongURL    string    `gorm:"not null"`
	ClickCount int64     `gorm:"not null;default:0"`
	CreatedBy  string    `gorm:"size:64;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
