package redis

import (
	"context"
	"testing"
	"time"

	"uplay-player-service/internal/domain"
	"uplay-player-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(map[string]domain.Catalog{
			"video-1": sampleCatalog(),
		}),
	}
	repo := NewCatalogRepository(client, loader, time.Minute)

	catalog, err := repo.GetCatalog(context.Background(), "video-1")
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("video:video-1:catalog") {
		t.Fatalf("expected catalog cached in redis")
	}

	// Second call should hit the cache, loader not incremented, and the
	// round-tripped catalog must keep its question content.
	catalog, err = repo.GetCatalog(context.Background(), "video-1")
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(catalog.Questions) != 1 || catalog.Questions[0].CorrectAnswerID != "b" {
		t.Fatalf("cached catalog lost content: %+v", catalog)
	}
}

type countingLoader struct {
	memory.CatalogLoader
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

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
