// services/sweeper.go
package services

import (
	"fmt"
	"log"
	"time"

	"player-rewards-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartWindowSweeper clears the active flag on events whose window has
// ended, so list reads and the mirror feed stay honest between mutations.
// The returned scheduler must be shut down on exit.
func (s *EventService) StartWindowSweeper() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create sweeper scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var events []models.Event
			now := time.Now()
			err := s.DB.Where("active = ? AND end_time <= ?", true, now).
				Find(&events).Error
			if err != nil {
				log.Printf("[Sweeper] DB error: %v", err)
				return
			}

			for _, ev := range events {
				ev.Active = false
				if err := s.DB.Save(&ev).Error; err != nil {
					log.Printf("[Sweeper] Failed to deactivate event %s: %v", ev.ID, err)
				} else {
					log.Printf("✅ Auto-deactivated ended event: %s", ev.Name)
				}
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule event window sweep: %w", err)
	}

	sched.Start()
	return sched, nil
}
