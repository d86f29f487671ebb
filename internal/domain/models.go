package domain

// Difficulty buckets scale a question's reward.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rarity classifies how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RarityEpic   Rarity = "epic"
)

// AnswerOption is one selectable answer for a question.
type AnswerOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// RewardBase is the catalog-defined base payout for answering a question correctly.
type RewardBase struct {
	Merits int `json:"merits"`
	Ondas  int `json:"ondas"`
}

// Question is an interactive overlay question tied to a playback window.
// Questions are defined once in the catalog and never mutated.
type Question struct {
	ID              int            `json:"id"`
	Timestamp       int            `json:"timestamp"`    // window start, seconds into the video
	EndTimestamp    int            `json:"endTimestamp"` // window end, inclusive
	TimeLimit       int            `json:"timeLimit"`    // seconds to answer once shown
	Difficulty      Difficulty     `json:"difficulty"`
	Prompt          string         `json:"prompt"`
	Options         []AnswerOption `json:"options"`
	CorrectAnswerID string         `json:"correctAnswerId"`
	Reward          RewardBase     `json:"reward"`
}

// Catalog is the ordered question set attached to one video.
type Catalog struct {
	VideoID   string     `json:"videoId"`
	Duration  float64    `json:"duration"` // seconds
	Questions []Question `json:"questions"`
}

// PlayerMetrics accumulates one session's progress. All fields grow
// monotonically except CurrentStreak, which resets on an incorrect
// answer, skip, or timeout.
type PlayerMetrics struct {
	Merits            int     `json:"merits"`
	Ondas             int     `json:"ondas"`
	Level             int     `json:"level"`
	Experience        int     `json:"experience"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	CorrectAnswers    int     `json:"correctAnswers"`
	CurrentStreak     int     `json:"currentStreak"`
	MaxStreak         int     `json:"maxStreak"`
	TotalWatchTime    float64 `json:"totalWatchTime"`
	VideosCompleted   int     `json:"videosCompleted"`
}

// Achievement is an immutable entry describing an unlockable badge.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      Rarity `json:"rarity"`
}

// Reward is the computed payout for a single resolution. It is a value
// object; running totals live in PlayerMetrics.
type Reward struct {
	Merits      int          `json:"merits"`
	Ondas       int          `json:"ondas"`
	Experience  int          `json:"experience"`
	Achievement *Achievement `json:"achievement,omitempty"`
}

// IsZero reports whether the reward carries nothing worth announcing.
func (r Reward) IsZero() bool {
	return r.Merits == 0 && r.Ondas == 0 && r.Experience == 0 && r.Achievement == nil
}
