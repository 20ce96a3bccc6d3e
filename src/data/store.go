package data

import (
	"errors"

	"github.com/cryptiklemur/discordarr/src/types"
	"gorm.io/gorm"
)

// Store is the durable request table shared by the interaction handlers and
// the polling loops. Every mutation commits before returning; the pollers
// rely on that to stay idempotent across cycles and restarts.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreatePending inserts a new pending request and returns its id. Callers
// must check FindPendingByOverseerrID first; the unique index on the
// Overseerr request id is the backstop, not the guard.
func (s *Store) CreatePending(req *types.PendingRequest) (uint64, error) {
	if err := s.db.Create(req).Error; err != nil {
		return 0, err
	}
	return req.ID, nil
}

func (s *Store) GetPending(id uint64) (*types.PendingRequest, error) {
	var req types.PendingRequest
	err := s.db.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// RemovePending deletes a pending request. Idempotent.
func (s *Store) RemovePending(id uint64) error {
	return s.db.Delete(&types.PendingRequest{}, id).Error
}

// FindPendingByOverseerrID returns the pending request for an Overseerr
// request id, or nil. This is what keeps the discovery loop from posting a
// second admin prompt for the same external request.
func (s *Store) FindPendingByOverseerrID(requestID uint64) (*types.PendingRequest, error) {
	var req types.PendingRequest
	err := s.db.Where("overseerr_request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListUnpostedPending returns pending requests whose admin prompt has not
// been sent yet.
func (s *Store) ListUnpostedPending() ([]types.PendingRequest, error) {
	var reqs []types.PendingRequest
	err := s.db.Where("phase = ?", types.PhaseUnposted).Find(&reqs).Error
	return reqs, err
}

// MarkPendingPosted records where the admin prompt (and optional pending
// announcement and thread) landed and flips the phase to posted.
func (s *Store) MarkPendingPosted(id uint64, channelID, messageID, threadID, pendingChannelID, pendingMessageID string) error {
	updates := map[string]interface{}{
		"phase":      types.PhasePosted,
		"channel_id": channelID,
		"message_id": messageID,
	}
	if threadID != "" {
		updates["thread_id"] = threadID
	}
	if pendingChannelID != "" {
		updates["pending_channel_id"] = pendingChannelID
	}
	if pendingMessageID != "" {
		updates["pending_message_id"] = pendingMessageID
	}
	return s.db.Model(&types.PendingRequest{}).Where("id = ?", id).Updates(updates).Error
}

// UpsertTracked inserts or replaces a tracked request keyed by the Overseerr
// request id.
func (s *Store) UpsertTracked(req *types.TrackedRequest) error {
	return s.db.Save(req).Error
}

func (s *Store) GetTracked(requestID uint64) (*types.TrackedRequest, error) {
	var req types.TrackedRequest
	err := s.db.First(&req, "request_id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// RemoveTracked deletes a tracked request. Idempotent.
func (s *Store) RemoveTracked(requestID uint64) error {
	return s.db.Delete(&types.TrackedRequest{}, "request_id = ?", requestID).Error
}

func (s *Store) ListTracked() ([]types.TrackedRequest, error) {
	var reqs []types.TrackedRequest
	err := s.db.Find(&reqs).Error
	return reqs, err
}

func (s *Store) ListTrackedByUser(discordUserID string) ([]types.TrackedRequest, error) {
	var reqs []types.TrackedRequest
	err := s.db.Where("discord_user_id = ?", discordUserID).Find(&reqs).Error
	return reqs, err
}

func (s *Store) UpdateTrackedProgress(requestID uint64, percent float64) error {
	return s.db.Model(&types.TrackedRequest{}).
		Where("request_id = ?", requestID).
		Update("last_progress", percent).Error
}

func (s *Store) UpdateTrackedThreadMessage(requestID uint64, messageID string) error {
	return s.db.Model(&types.TrackedRequest{}).
		Where("request_id = ?", requestID).
		Update("last_thread_message_id", messageID).Error
}

func (s *Store) UpdateTrackedTvdbID(requestID, tvdbID uint64) error {
	return s.db.Model(&types.TrackedRequest{}).
		Where("request_id = ?", requestID).
		Update("tvdb_id", tvdbID).Error
}

// MarkCaughtUpNotified sets the one-shot guard for the "caught up, waiting
// for new episodes" notice.
func (s *Store) MarkCaughtUpNotified(requestID uint64) error {
	return s.db.Model(&types.TrackedRequest{}).
		Where("request_id = ?", requestID).
		Update("caught_up_notified", true).Error
}

// ListTrackedMissingTvdbID returns tv requests whose Sonarr-side series id
// has not been resolved yet.
func (s *Store) ListTrackedMissingTvdbID() ([]types.TrackedRequest, error) {
	var reqs []types.TrackedRequest
	err := s.db.Where("media_type = ? AND tvdb_id IS NULL", types.MediaTypeTV).Find(&reqs).Error
	return reqs, err
}
