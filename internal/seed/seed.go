// Package seed bootstraps a fresh installation: a privileged admin
// account and, for development, a batch of fake inventory.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/harborline/shopd/internal/auth/password"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	userdomain "github.com/harborline/shopd/internal/user/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultAdminName     = "Shopd Admin"
	defaultAdminEmail    = "admin@shopd.local"
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin-change-me"

	batchSize = 100
)

// EnsureAdmin creates the privileged admin account if no user carries
// the admin username yet.
func EnsureAdmin(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing userdomain.User
		err := tx.Where("username = ?", defaultAdminUsername).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}

		admin := userdomain.User{
			ID:           node.Generate(),
			Name:         defaultAdminName,
			Email:        strings.ToLower(defaultAdminEmail),
			Username:     defaultAdminUsername,
			PasswordHash: hashed,
			IsPrivileged: true,
			Version:      1,
		}
		return tx.Create(&admin).Error
	})
}

var (
	seedAdjectives = []string{"Rustic", "Sleek", "Handmade", "Refined", "Practical", "Generic", "Licensed", "Ergonomic"}
	seedNouns      = []string{"Widget", "Gadget", "Panel", "Bracket", "Module", "Adapter", "Console", "Kit"}
	seedTypes      = []string{"digital", "physical", "service", "subscription", "license"}
)

// SeedResources inserts total fake inventory rows in batches; it is a
// no-op when the resources table already has rows.
func SeedResources(db *gorm.DB, total int) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if total <= 0 {
		return nil
	}

	var count int64
	if err := db.Model(&resourcedomain.Resource{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for inserted := 0; inserted < total; inserted += batchSize {
		n := batchSize
		if remaining := total - inserted; remaining < n {
			n = remaining
		}

		batch := make([]resourcedomain.Resource, 0, n)
		for i := 0; i < n; i++ {
			batch = append(batch, fakeResource())
		}
		if err := db.Create(&batch).Error; err != nil {
			return err
		}
	}
	return nil
}

func fakeResource() resourcedomain.Resource {
	name := fmt.Sprintf("%s %s",
		seedAdjectives[rand.Intn(len(seedAdjectives))],
		seedNouns[rand.Intn(len(seedNouns))],
	)
	description := fmt.Sprintf("Seeded inventory item: %s.", strings.ToLower(name))

	// Price in cents keeps the decimal clean at two places.
	price := decimal.NewFromInt(int64(rand.Intn(99900) + 99)).Div(decimal.NewFromInt(100))

	return resourcedomain.Resource{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        seedTypes[rand.Intn(len(seedTypes))],
		Description: &description,
		Amount:      int64(rand.Intn(1000) + 1),
		Price:       price,
		Version:     1,
	}
}
