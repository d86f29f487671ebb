package memory

import (
	"context"
	"testing"
	"time"

	"uplay-player-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[string]domain.Catalog{
			"video-1": sampleCatalog(),
		}),
	}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background(), "video-1"); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCatalog(context.Background(), "video-1"); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestStaticLoaderUnknownVideo(t *testing.T) {
	loader := NewStaticCatalogLoader(map[string]domain.Catalog{})
	if _, err := loader.LoadCatalog(context.Background(), "missing"); err != domain.ErrCatalogNotFound {
		t.Fatalf("expected catalog-not-found, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, videoID string) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, videoID)
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		VideoID:  "video-1",
		Duration: 60,
		Questions: []domain.Question{
			{
				ID:           1,
				Timestamp:    5,
				EndTimestamp: 20,
				TimeLimit:    10,
				Difficulty:   domain.DifficultyEasy,
				Prompt:       "What is 2 + 2?",
				Options: []domain.AnswerOption{
					{ID: "a", Label: "A", Text: "3"},
					{ID: "b", Label: "B", Text: "4"},
				},
				CorrectAnswerID: "b",
				Reward:          domain.RewardBase{Merits: 10, Ondas: 5},
			},
		},
	}
}
