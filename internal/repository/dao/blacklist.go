package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrBlacklistEntryExists   = errors.New("email already blacklisted")
	ErrBlacklistEntryNotFound = errors.New("blacklist entry not found")
)

type BlacklistEntry struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex:uni_blacklist_entries_email;not null"`
	Reason    string
	CreatedAt time.Time `gorm:"not null"`
}

type BlacklistDAO struct {
	db *gorm.DB
}

func NewBlacklistDAO(db *gorm.DB) *BlacklistDAO {
	return &BlacklistDAO{
		db: db,
	}
}

func (d *BlacklistDAO) Insert(ctx context.Context, entry BlacklistEntry) (BlacklistEntry, error) {
	entry.Email = strings.ToLower(strings.TrimSpace(entry.Email))

	result := d.db.WithContext(ctx).Create(&entry)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_blacklist_entries_email") {
			return BlacklistEntry{}, ErrBlacklistEntryExists
		}

		return BlacklistEntry{}, result.Error
	}

	return entry, nil
}

func (d *BlacklistDAO) Delete(ctx context.Context, email string) error {
	result := d.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Delete(&BlacklistEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBlacklistEntryNotFound
	}

	return nil
}

func (d *BlacklistDAO) Exists(ctx context.Context, email string) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&BlacklistEntry{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *BlacklistDAO) FindAll(ctx context.Context) ([]BlacklistEntry, error) {
	var entries []BlacklistEntry

	result := d.db.WithContext(ctx).Order("created_at desc").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}
