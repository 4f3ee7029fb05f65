// Package quiz builds multiple-choice quizzes from flashcards and scores them.
package quiz

import (
	"math/rand/v2"

	"github.com/andrewpaige1/lingocards-api/models"
)

const (
	// MinCards is the smallest set a quiz can be generated from.
	MinCards = 2
	// MaxOptions is the option count of a question when the set is large enough.
	MaxOptions = 4
)

// Card is the part of a flashcard a quiz needs.
type Card struct {
	ID       string
	Question string
	Answer   string
	Example  string
}

// FromFlashcards converts stored cards, keeping their order.
func FromFlashcards(cards []models.Flashcard) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = Card{ID: c.ID, Question: c.Question, Answer: c.Answer, Example: c.Example}
	}
	return out
}

// Question is one multiple-choice question; ID is the source card's id.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Generator produces quizzes. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator drawing from rng, or from a randomly seeded
// source when rng is nil.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Generate returns one question per card in random order. Each question offers
// the card's answer plus up to MaxOptions-1 answers of other cards, sampled
// without replacement. Callers reject sets smaller than MinCards beforehand.
func (g *Generator) Generate(cards []Card) []Question {
	questions := make([]Question, 0, len(cards))
	for _, idx := range g.rng.Perm(len(cards)) {
		card := cards[idx]

		others := make([]int, 0, len(cards)-1)
		for i := range cards {
			if i != idx {
				others = append(others, i)
			}
		}
		n := min(MaxOptions-1, len(others))
		// partial Fisher-Yates: the first n entries become the sample
		for i := 0; i < n; i++ {
			j := i + g.rng.IntN(len(others)-i)
			others[i], others[j] = others[j], others[i]
		}

		options := make([]string, 0, n+1)
		options = append(options, card.Answer)
		for _, o := range others[:n] {
			options = append(options, cards[o].Answer)
		}
		g.rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		questions = append(questions, Question{
			ID:            card.ID,
			Question:      card.Question,
			CorrectAnswer: card.Answer,
			Options:       options,
			Explanation:   card.Example,
		})
	}
	return questions
}
