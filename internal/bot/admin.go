package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"trainbot/internal/models"
	"trainbot/internal/storage"
)

// handleAdminCommand gates and routes the administration commands.
// Admin status comes from the database flag or the configured owner ID.
func (b *Bot) handleAdminCommand(ctx context.Context, event Event, user *models.User) {
	if !user.IsAdmin && event.TelegramID != b.adminID {
		b.logger.Info("Non-admin tried an admin command",
			zap.Int64("telegram_id", event.TelegramID),
			zap.String("command", event.Command))
		b.sendText(event.ChatID, "This command is for administrators only.")
		return
	}

	switch event.Command {
	case "users":
		b.handleListUsers(ctx, event)
	case "activate":
		b.handleSetActive(ctx, event, true)
	case "deactivate":
		b.handleSetActive(ctx, event, false)
	case "promote":
		b.handlePromote(ctx, event)
	}
}

func (b *Bot) handleListUsers(ctx context.Context, event Event) {
	users, err := b.db.ListUsers(ctx)
	if err != nil {
		b.logger.Error("Failed to list users", zap.Error(err))
		b.sendText(event.ChatID, "Failed to load users.")
		return
	}
	if len(users) == 0 {
		b.sendText(event.ChatID, "No registered users yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 %d registered users:\n\n", len(users)))
	for _, u := range users {
		status := "active"
		if !u.IsActive {
			status = "deactivated"
		}
		role := ""
		if u.IsAdmin {
			role = ", admin"
		}
		name := u.FullName
		if name == "" {
			name = u.Username
		}
		sb.WriteString(fmt.Sprintf("%d — %s (%s%s)\n", u.TelegramID, name, status, role))
	}
	b.sendText(event.ChatID, sb.String())
}

func (b *Bot) handleSetActive(ctx context.Context, event Event, active bool) {
	targetID, err := strconv.ParseInt(event.Args, 10, 64)
	if err != nil {
		b.sendText(event.ChatID, fmt.Sprintf("Usage: /%s <telegram_id>", event.Command))
		return
	}

	if err := b.db.SetActive(ctx, targetID, active); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.sendText(event.ChatID, "No user with that ID.")
			return
		}
		b.logger.Error("Failed to update user", zap.Error(err), zap.Int64("target_id", targetID))
		b.sendText(event.ChatID, "Failed to update the user.")
		return
	}

	verb := "activated"
	if !active {
		verb = "deactivated"
	}
	b.logger.Info("User status changed",
		zap.Int64("target_id", targetID),
		zap.Bool("active", active),
		zap.Int64("by", event.TelegramID))
	b.sendText(event.ChatID, fmt.Sprintf("User %d %s.", targetID, verb))
}

func (b *Bot) handlePromote(ctx context.Context, event Event) {
	targetID, err := strconv.ParseInt(event.Args, 10, 64)
	if err != nil {
		b.sendText(event.ChatID, "Usage: /promote <telegram_id>")
		return
	}

	if err := b.db.SetAdmin(ctx, targetID, true); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.sendText(event.ChatID, "No user with that ID.")
			return
		}
		b.logger.Error("Failed to promote user", zap.Error(err), zap.Int64("target_id", targetID))
		b.sendText(event.ChatID, "Failed to promote the user.")
		return
	}

	b.logger.Info("User promoted to admin",
		zap.Int64("target_id", targetID),
		zap.Int64("by", event.TelegramID))
	b.sendText(event.ChatID, fmt.Sprintf("User %d is now an administrator.", targetID))
}
