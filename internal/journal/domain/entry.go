package domain

import "time"

// MaxContentLength caps entry content at 100k characters
const MaxContentLength = 100_000

// Mood is the user-selected mood tag on an entry
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodCalm     Mood = "calm"
	MoodNeutral  Mood = "neutral"
	MoodSad      Mood = "sad"
	MoodAnxious  Mood = "anxious"
	MoodAngry    Mood = "angry"
	MoodExcited  Mood = "excited"
	MoodGrateful Mood = "grateful"
	MoodStressed Mood = "stressed"
	MoodTired    Mood = "tired"
)

var validMoods = map[Mood]bool{
	MoodHappy:    true,
	MoodCalm:     true,
	MoodNeutral:  true,
	MoodSad:      true,
	MoodAnxious:  true,
	MoodAngry:    true,
	MoodExcited:  true,
	MoodGrateful: true,
	MoodStressed: true,
	MoodTired:    true,
}

// Valid reports whether m is part of the mood vocabulary
func (m Mood) Valid() bool {
	return validMoods[m]
}

// JournalEntry is one journal entry. The sentiment fields stay null until the
// background analyzer has processed the entry; an entry is valid without them.
type JournalEntry struct {
	ID                  string     `json:"id" gorm:"primaryKey"`
	UserID              string     `json:"user_id" gorm:"index;not null"`
	Content             string     `json:"content" gorm:"type:text;not null"`
	Mood                string     `json:"mood,omitempty"`
	SentimentScore      *float64   `json:"sentiment_score,omitempty"`
	SentimentMagnitude  *float64   `json:"sentiment_magnitude,omitempty"`
	PrimaryEmotion      *string    `json:"primary_emotion,omitempty"`
	SentimentAnalyzedAt *time.Time `json:"sentiment_analyzed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (JournalEntry) TableName() string {
	return "journal_entries"
}
