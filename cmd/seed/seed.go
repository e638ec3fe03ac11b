package main

import (
	"fmt"
	"time"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/services/event"
	"community-recycle-tracker/services/pricing"
	"community-recycle-tracker/services/recycler"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed inserts a verified and an unverified recycler, two upcoming events
// and the default rates, then prints bearer tokens for local testing.
// Existing rows are left untouched.
func Seed(db *gorm.DB, node *snowflake.Node, tokens *auth.Tokens) error {
	now := time.Now().UTC()

	recyclers := []recycler.Recycler{
		{ID: "1000000000000000001", Name: "Ada Verified", Email: "ada@example.org", Verified: true, VerifiedAt: &now, CreatedAt: now, UpdatedAt: now},
		{ID: "1000000000000000002", Name: "Ben Pending", Email: "ben@example.org", CreatedAt: now, UpdatedAt: now},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&recyclers).Error; err != nil {
		return fmt.Errorf("seed recyclers: %w", err)
	}

	var events []event.Event
	for i, addr := range []string{"12 Harbour Road", "3 Market Square"} {
		start := now.Truncate(24 * time.Hour).Add(time.Duration(i+1)*24*time.Hour + 9*time.Hour)
		events = append(events, event.Event{
			ID:             node.Generate().String(),
			Slug:           slug.Make(addr + " " + start.Format("2006-01-02")),
			Address:        addr,
			StartTime:      start,
			WeightCapacity: 500,
			CreatedAt:      now,
		})
	}
	if err := db.Create(&events).Error; err != nil {
		return fmt.Errorf("seed events: %w", err)
	}

	rates := []pricing.MaterialRate{
		{Material: "plastic", Expression: "weight * 0.5", Description: "Mixed rigid plastics", UpdatedAt: now},
		{Material: "glass", Expression: "weight * 0.2", Description: "Clear and coloured glass", UpdatedAt: now},
		{Material: "aluminium", Expression: "weight * 1.2", Description: "Cans and foil", UpdatedAt: now},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rates).Error; err != nil {
		return fmt.Errorf("seed rates: %w", err)
	}

	for _, r := range recyclers {
		token, err := tokens.Issue(r.ID, auth.RoleRecycler)
		if err != nil {
			return err
		}
		zap.L().Info("recycler token", zap.String("recycler_id", r.ID), zap.String("token", token))
	}

	token, err := tokens.Issue("organizer", auth.RoleOrganizer)
	if err != nil {
		return err
	}
	zap.L().Info("organizer token", zap.String("token", token))

	for _, e := range events {
		zap.L().Info("event seeded", zap.String("event_id", e.ID), zap.String("slug", e.Slug))
	}

	return nil
}
