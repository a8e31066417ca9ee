package worker

import (
	"context"
	"fmt"

	"weddingplan/internal/models"
)

// Applier performs one mirror command against the remote replica.
type Applier interface {
	Apply(ctx context.Context, cmd models.MirrorCommand) error
}

// Replica is the subset of the remote repository the worker writes to.
type Replica interface {
	UpsertTask(ctx context.Context, userID string, t models.Task) error
	UpsertPrenupItem(ctx context.Context, userID string, it models.PrenupItem) error
	SaveSettings(ctx context.Context, userID string, s models.Settings) error
}

// ReplicaApplier applies commands to a Replica.
type ReplicaApplier struct {
	Replica Replica
}

func (a ReplicaApplier) Apply(ctx context.Context, cmd models.MirrorCommand) error {
	if cmd.UserID == "" {
		return fmt.Errorf("mirror command %s without user", cmd.Action)
	}
	switch cmd.Action {
	case models.ActionUpsertTask:
		if cmd.Task == nil {
			return fmt.Errorf("%s without task", cmd.Action)
		}
		return a.Replica.UpsertTask(ctx, cmd.UserID, *cmd.Task)
	case models.ActionUpsertPrenup:
		if cmd.PrenupItem == nil {
			return fmt.Errorf("%s without item", cmd.Action)
		}
		return a.Replica.UpsertPrenupItem(ctx, cmd.UserID, *cmd.PrenupItem)
	case models.ActionSaveSettings:
		if cmd.Settings == nil {
			return fmt.Errorf("%s without settings", cmd.Action)
		}
		return a.Replica.SaveSettings(ctx, cmd.UserID, *cmd.Settings)
	default:
		return fmt.Errorf("unknown mirror action %q", cmd.Action)
	}
}
