package services

import (
	"errors"
	"log"
	"time"

	"player-rewards-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type EventService struct {
	DB       *gorm.DB
	Access   *AccessControlService
	Notifier *Notifier
}

func NewEventService(db *gorm.DB, access *AccessControlService, notifier *Notifier) *EventService {
	return &EventService{DB: db, Access: access, Notifier: notifier}
}

// EventInput carries the mutable event fields for create and update.
type EventInput struct {
	Name            string    `json:"name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	MaxParticipants int64     `json:"max_participants"`
	Active          bool      `json:"active"`
}

func (s *EventService) requireManager(caller string) error {
	if !s.Access.HasRole(models.RoleEventManager, caller) {
		return models.ErrNotEventManager
	}
	return nil
}

func validateWindow(in EventInput) error {
	if !in.StartTime.Before(in.EndTime) {
		return models.ErrInvalidTimeWindow
	}
	return nil
}

func validateReward(reward *models.EventReward) error {
	if reward == nil {
		return nil
	}
	if reward.AchievementTier < 0 || reward.AchievementTier > 5 {
		return models.ErrInvalidRewardTier
	}
	return nil
}

// CreateEvent registers a new event, optionally with a reward. The reward is
// stored in a side table, keeping the hot config compact.
func (s *EventService) CreateEvent(caller, id string, in EventInput, reward *models.EventReward) (*models.Event, error) {
	if err := s.requireManager(caller); err != nil {
		return nil, err
	}
	if err := validateWindow(in); err != nil {
		return nil, err
	}
	if err := validateReward(reward); err != nil {
		return nil, err
	}

	var created *models.Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Event
		err := tx.Where("id = ?", id).First(&existing).Error
		if err == nil {
			return models.ErrEventExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		event := models.Event{
			ID:              id,
			Name:            in.Name,
			Slug:            slug.Make(in.Name),
			StartTime:       in.StartTime,
			EndTime:         in.EndTime,
			MaxParticipants: in.MaxParticipants,
			Active:          in.Active,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		created = &event

		if reward != nil {
			reward.EventID = id
			if err := tx.Create(reward).Error; err != nil {
				return err
			}
		}

		return s.Notifier.Emit(tx, models.NotifyEventCreated, "", map[string]any{
			"event_id":         id,
			"name":             in.Name,
			"start_time":       in.StartTime,
			"end_time":         in.EndTime,
			"max_participants": in.MaxParticipants,
			"has_reward":       reward != nil,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("📅 Event created: %s (%s)", id, in.Name)
	return created, nil
}

// UpdateEvent overwrites name, window, capacity and the active flag. It
// never touches the reward.
func (s *EventService) UpdateEvent(caller, id string, in EventInput) (*models.Event, error) {
	if err := s.requireManager(caller); err != nil {
		return nil, err
	}
	if err := validateWindow(in); err != nil {
		return nil, err
	}

	var updated *models.Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrEventNotFound
			}
			return err
		}

		event.Name = in.Name
		event.Slug = slug.Make(in.Name)
		event.StartTime = in.StartTime
		event.EndTime = in.EndTime
		event.MaxParticipants = in.MaxParticipants
		event.Active = in.Active

		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		updated = &event

		return s.Notifier.Emit(tx, models.NotifyEventUpdated, "", map[string]any{
			"event_id":         id,
			"name":             in.Name,
			"start_time":       in.StartTime,
			"end_time":         in.EndTime,
			"max_participants": in.MaxParticipants,
			"active":           in.Active,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetEventReward attaches or replaces the reward config for an event.
func (s *EventService) SetEventReward(caller, id string, reward models.EventReward) error {
	if err := s.requireManager(caller); err != nil {
		return err
	}
	if err := validateReward(&reward); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrEventNotFound
			}
			return err
		}

		reward.EventID = id
		if err := tx.Save(&reward).Error; err != nil {
			return err
		}

		return s.Notifier.Emit(tx, models.NotifyEventRewardSet, "", map[string]any{
			"event_id":         id,
			"achievement_tier": reward.AchievementTier,
			"xp_bonus":         reward.XPBonus,
			"cosmetic_items":   reward.CosmeticItemIDs,
		})
	})
}

// GetEvent returns an event and, when present, its reward.
func (s *EventService) GetEvent(id string) (*models.Event, *models.EventReward, error) {
	var event models.Event
	if err := s.DB.Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.ErrEventNotFound
		}
		return nil, nil, err
	}
	var reward models.EventReward
	err := s.DB.Where("event_id = ?", id).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &event, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &event, &reward, nil
}

// ListEvents returns events, optionally only ones flagged active.
func (s *EventService) ListEvents(activeOnly bool) ([]models.Event, error) {
	var events []models.Event
	q := s.DB.Order("start_time ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&events).Error
	return events, err
}

// IsEventActive derives liveness: flagged active, now inside the window, and
// capacity either unbounded or not yet full.
func (s *EventService) IsEventActive(id string) (bool, error) {
	event, _, err := s.GetEvent(id)
	if err != nil {
		return false, err
	}
	now := time.Now()
	if !event.Active || now.Before(event.StartTime) || now.After(event.EndTime) {
		return false, nil
	}
	if event.MaxParticipants > 0 && event.CurrentParticipants >= event.MaxParticipants {
		return false, nil
	}
	return true, nil
}

// IncrementParticipants records one verified completion. Invoked by the
// trusted off-system completion-verification process via its manager role.
func (s *EventService) IncrementParticipants(caller, id string) (*models.Event, error) {
	if err := s.requireManager(caller); err != nil {
		return nil, err
	}

	var updated *models.Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrEventNotFound
			}
			return err
		}
		if event.MaxParticipants > 0 && event.CurrentParticipants >= event.MaxParticipants {
			return models.ErrEventFull
		}
		event.CurrentParticipants++
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		updated = &event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
