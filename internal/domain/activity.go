package domain

import (
	"time"

	"github.com/google/uuid"
)

// AudioStatus tracks the synthesis state of an audio-bearing item. Speech
// synthesis is a downstream step decoupled from text generation, so listening
// items are always created pending.
type AudioStatus string

// Audio synthesis states.
const (
	AudioStatusPending AudioStatus = "pending"
	AudioStatusReady   AudioStatus = "ready"
	AudioStatusFailed  AudioStatus = "failed"
)

// ActivityHeader carries the identity and metadata shared by the authoring
// and public views of an activity. Both views must expose the same
// ActivityID and the same item ordering so student answers can be matched
// back to authoring data.
type ActivityHeader struct {
	ActivityID uuid.UUID  `json:"activity_id"`
	Skill      Skill      `json:"skill"`
	Format     Format     `json:"format"`
	Difficulty Difficulty `json:"difficulty"`
	Language   string     `json:"language"`
	TotalItems int        `json:"total_items"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewActivityHeader builds a header with a fresh activity ID.
func NewActivityHeader(skill Skill, format Format, difficulty Difficulty, language string, totalItems int) ActivityHeader {
	return ActivityHeader{
		ActivityID: uuid.New(),
		Skill:      skill,
		Format:     format,
		Difficulty: difficulty,
		Language:   language,
		TotalItems: totalItems,
		CreatedAt:  time.Now().UTC(),
	}
}

// ---- listening / quiz ----

// ListeningQuizItem is the authoring view of one listening comprehension
// question. CorrectIndex, Explanation and AudioText are answer-bearing.
type ListeningQuizItem struct {
	ItemID       uuid.UUID   `json:"item_id"`
	Question     string      `json:"question"`
	Options      []string    `json:"options"`
	CorrectIndex int         `json:"correct_index"`
	Explanation  string      `json:"explanation,omitempty"`
	AudioText    string      `json:"audio_text"`
	AudioStatus  AudioStatus `json:"audio_status"`
	AudioURL     string      `json:"audio_url,omitempty"`
}

// PublicListeningQuizItem is the redacted student view of a listening
// question. It must never carry the correct option, the explanation, or the
// spoken transcript.
type PublicListeningQuizItem struct {
	ItemID      uuid.UUID   `json:"item_id"`
	Question    string      `json:"question"`
	Options     []string    `json:"options"`
	AudioStatus AudioStatus `json:"audio_status"`
	AudioURL    string      `json:"audio_url,omitempty"`
}

// ListeningQuizActivity is the authoring view of a listening quiz.
type ListeningQuizActivity struct {
	ActivityHeader
	Items []ListeningQuizItem `json:"items"`
}

// PublicListeningQuizActivity is the redacted view of a listening quiz.
type PublicListeningQuizActivity struct {
	ActivityHeader
	Items []PublicListeningQuizItem `json:"items"`
}

// Public derives the student view. This projection is the single redaction
// boundary for the format: ordering and identifiers are preserved, the
// answer-bearing fields are dropped.
func (a *ListeningQuizActivity) Public() *PublicListeningQuizActivity {
	pub := &PublicListeningQuizActivity{
		ActivityHeader: a.ActivityHeader,
		Items:          make([]PublicListeningQuizItem, len(a.Items)),
	}
	for i, it := range a.Items {
		pub.Items[i] = PublicListeningQuizItem{
			ItemID:      it.ItemID,
			Question:    it.Question,
			Options:     it.Options,
			AudioStatus: it.AudioStatus,
			AudioURL:    it.AudioURL,
		}
	}
	return pub
}

// ---- reading / quiz ----

// ReadingQuizItem is the authoring view of one reading comprehension
// question. CorrectIndex and Explanation are answer-bearing.
type ReadingQuizItem struct {
	ItemID       uuid.UUID `json:"item_id"`
	Question     string    `json:"question"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	Explanation  string    `json:"explanation,omitempty"`
}

// PublicReadingQuizItem is the redacted student view of a reading question.
type PublicReadingQuizItem struct {
	ItemID   uuid.UUID `json:"item_id"`
	Question string    `json:"question"`
	Options  []string  `json:"options"`
}

// ReadingQuizActivity is the authoring view of a reading quiz. The passage is
// shown to students, so it lives in the header of both views.
type ReadingQuizActivity struct {
	ActivityHeader
	Passage string            `json:"passage"`
	Items   []ReadingQuizItem `json:"items"`
}

// PublicReadingQuizActivity is the redacted view of a reading quiz.
type PublicReadingQuizActivity struct {
	ActivityHeader
	Passage string                  `json:"passage"`
	Items   []PublicReadingQuizItem `json:"items"`
}

// Public derives the student view of a reading quiz.
func (a *ReadingQuizActivity) Public() *PublicReadingQuizActivity {
	pub := &PublicReadingQuizActivity{
		ActivityHeader: a.ActivityHeader,
		Passage:        a.Passage,
		Items:          make([]PublicReadingQuizItem, len(a.Items)),
	}
	for i, it := range a.Items {
		pub.Items[i] = PublicReadingQuizItem{
			ItemID:   it.ItemID,
			Question: it.Question,
			Options:  it.Options,
		}
	}
	return pub
}

// ---- vocabulary / flashcards ----

// FlashcardItem is the authoring view of one vocabulary card. Back and
// Example are answer-bearing: the student sees only the front until they
// flip the card through the LMS flow.
type FlashcardItem struct {
	ItemID       uuid.UUID `json:"item_id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	Example      string    `json:"example,omitempty"`
	PartOfSpeech string    `json:"part_of_speech,omitempty"`
}

// PublicFlashcardItem is the redacted student view of a vocabulary card.
type PublicFlashcardItem struct {
	ItemID       uuid.UUID `json:"item_id"`
	Front        string    `json:"front"`
	PartOfSpeech string    `json:"part_of_speech,omitempty"`
}

// FlashcardActivity is the authoring view of a flashcard set.
type FlashcardActivity struct {
	ActivityHeader
	Items []FlashcardItem `json:"items"`
}

// PublicFlashcardActivity is the redacted view of a flashcard set.
type PublicFlashcardActivity struct {
	ActivityHeader
	Items []PublicFlashcardItem `json:"items"`
}

// Public derives the student view of a flashcard set.
func (a *FlashcardActivity) Public() *PublicFlashcardActivity {
	pub := &PublicFlashcardActivity{
		ActivityHeader: a.ActivityHeader,
		Items:          make([]PublicFlashcardItem, len(a.Items)),
	}
	for i, it := range a.Items {
		pub.Items[i] = PublicFlashcardItem{
			ItemID:       it.ItemID,
			Front:        it.Front,
			PartOfSpeech: it.PartOfSpeech,
		}
	}
	return pub
}

// ---- grammar / fill_blank ----

// FillBlankItem is the authoring view of one cloze item. Answer and Hint are
// answer-bearing.
type FillBlankItem struct {
	ItemID   uuid.UUID `json:"item_id"`
	Sentence string    `json:"sentence"`
	Answer   string    `json:"answer"`
	Hint     string    `json:"hint,omitempty"`
}

// PublicFillBlankItem is the redacted student view of a cloze item.
type PublicFillBlankItem struct {
	ItemID   uuid.UUID `json:"item_id"`
	Sentence string    `json:"sentence"`
}

// FillBlankActivity is the authoring view of a fill-in-the-blank exercise.
type FillBlankActivity struct {
	ActivityHeader
	Items []FillBlankItem `json:"items"`
}

// PublicFillBlankActivity is the redacted view of a fill-in-the-blank
// exercise.
type PublicFillBlankActivity struct {
	ActivityHeader
	Items []PublicFillBlankItem `json:"items"`
}

// Public derives the student view of a fill-in-the-blank exercise.
func (a *FillBlankActivity) Public() *PublicFillBlankActivity {
	pub := &PublicFillBlankActivity{
		ActivityHeader: a.ActivityHeader,
		Items:          make([]PublicFillBlankItem, len(a.Items)),
	}
	for i, it := range a.Items {
		pub.Items[i] = PublicFillBlankItem{
			ItemID:   it.ItemID,
			Sentence: it.Sentence,
		}
	}
	return pub
}
