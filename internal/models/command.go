package models

import "time"

// MirrorAction names the remote write carried by a MirrorCommand.
type MirrorAction string

const (
	ActionUpsertTask   MirrorAction = "upsert_task"
	ActionUpsertPrenup MirrorAction = "upsert_prenup"
	ActionSaveSettings MirrorAction = "save_settings"
)

// MirrorCommand is the queue payload for one remote replica write.
type MirrorCommand struct {
	Action      MirrorAction `json:"action"`
	UserID      string       `json:"user_id"`
	Device      string       `json:"device,omitempty"`
	Task        *Task        `json:"task,omitempty"`
	PrenupItem  *PrenupItem  `json:"prenup_item,omitempty"`
	Settings    *Settings    `json:"settings,omitempty"`
	RequestedAt time.Time    `json:"requested_at"`
}

// Key identifies the record the command writes. Commands sharing a key must
// be applied in publish order.
func (c MirrorCommand) Key() string {
	switch {
	case c.Task != nil:
		return TaskKey(c.Task.ID)
	case c.PrenupItem != nil:
		return PrenupKey(c.PrenupItem.ID)
	default:
		return SettingsKey(c.UserID)
	}
}

func TaskKey(id string) string         { return "task:" + id }
func PrenupKey(id string) string       { return "prenup:" + id }
func SettingsKey(userID string) string { return "settings:" + userID }
