package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/applicant-intake/internal/domain"
)

type promptStore interface {
	ListActive(ctx context.Context) ([]domain.Prompt, error)
	PutIfAbsent(ctx context.Context, p *domain.Prompt) (bool, error)
}

// Defaults is the prompt pool seeded into an empty store.
var Defaults = []string{
	"Tell us about a time you changed your mind about something important.",
	"What's the most interesting rabbit hole you've gone down recently?",
	"Describe a project you're proud of that most people don't know about.",
	"What question do you wish more people would ask you?",
	"Tell us about someone who has significantly influenced your thinking.",
	"What's a contrarian belief you hold that others might disagree with?",
	"If you could have dinner with anyone, living or dead, who and why?",
}

type Service struct {
	repo promptStore
}

func NewService(repo promptStore) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Prompt, error) {
	return s.repo.ListActive(ctx)
}

// Sample returns up to n distinct active prompts chosen uniformly at random.
func (s *Service) Sample(ctx context.Context, n int) ([]domain.Prompt, error) {
	prompts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no active prompts: %w", domain.ErrUnavailable)
	}
	rand.Shuffle(len(prompts), func(i, j int) { prompts[i], prompts[j] = prompts[j], prompts[i] })
	if n < len(prompts) {
		prompts = prompts[:n]
	}
	return prompts, nil
}

// Pick returns one active prompt chosen uniformly at random.
func (s *Service) Pick(ctx context.Context) (*domain.Prompt, error) {
	sample, err := s.Sample(ctx, 1)
	if err != nil {
		return nil, err
	}
	return &sample[0], nil
}

// Seed writes the default prompts as prompt-1..prompt-N, leaving existing ids untouched.
func (s *Service) Seed(ctx context.Context) error {
	base := time.Now().UTC()
	for i, text := range Defaults {
		p := &domain.Prompt{
			PromptID:  fmt.Sprintf("prompt-%d", i+1),
			Text:      text,
			Active:    true,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
		created, err := s.repo.PutIfAbsent(ctx, p)
		if err != nil {
			return fmt.Errorf("seed %s: %w", p.PromptID, err)
		}
		if created {
			slog.Info("seeded prompt", "prompt_id", p.PromptID)
		}
	}
	return nil
}
