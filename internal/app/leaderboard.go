package app

import (
	"context"
	"fmt"
	"sort"

	"procap-study-service/internal/domain"
)

// LeaderboardService aggregates correct-first-try counts across all recorded
// answers into a ranked list of pseudonyms.
type LeaderboardService struct {
	answers AnswerRepository
	users   UserRepository
}

func NewLeaderboardService(answers AnswerRepository, users UserRepository) *LeaderboardService {
	return &LeaderboardService{answers: answers, users: users}
}

// Compute fetches every correct-first-try record, counts per user, joins to
// pseudonyms, and sorts descending by score. Ties keep arrival order.
func (s *LeaderboardService) Compute(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	records, err := s.answers.ListCorrectFirstTries(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch answers: %w", err)
	}

	scores := make(map[string]int)
	order := make([]string, 0)
	for _, record := range records {
		if record.UserID == "" {
			continue
		}
		if _, seen := scores[record.UserID]; !seen {
			order = append(order, record.UserID)
		}
		scores[record.UserID]++
	}
	if len(order) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	users, err := s.users.FindByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	pseudonyms := make(map[string]string, len(users))
	for _, user := range users {
		pseudonyms[user.ID] = user.Pseudonym
	}

	entries := make([]domain.LeaderboardEntry, 0, len(order))
	for _, userID := range order {
		pseudonym, ok := pseudonyms[userID]
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			Pseudonym: pseudonym,
			Score:     scores[userID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries, nil
}
