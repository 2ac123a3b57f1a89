package interviewquiz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

const (
	DefaultTopic      = "programming"
	DefaultDifficulty = "beginner"
)

//go:embed questionbank.json
var questionBankJSON []byte

// QuestionBank holds the static fallback questions keyed by topic and difficulty.
// The stored sets are never modified; every lookup returns a copy.
type QuestionBank struct {
	sets map[string]map[string][]Question

	mu  sync.Mutex
	rng *rand.Rand // nil disables shuffling
}

// LoadQuestionBank parses the embedded bank. Every set goes through ParseQuestions,
// so a bad entry fails loading instead of reaching a user.
func LoadQuestionBank() (*QuestionBank, error) {
	return parseQuestionBank(questionBankJSON)
}

func parseQuestionBank(data []byte) (*QuestionBank, error) {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode question bank: %w", err)
	}

	sets := make(map[string]map[string][]Question, len(raw))
	for topic, difficulties := range raw {
		topicKey := normalizeKey(topic)
		sets[topicKey] = make(map[string][]Question, len(difficulties))
		for difficulty, questionsJSON := range difficulties {
			questions, err := ParseQuestions(string(questionsJSON))
			if err != nil {
				return nil, fmt.Errorf("invalid question bank entry %s/%s: %w", topic, difficulty, err)
			}
			sets[topicKey][normalizeKey(difficulty)] = questions
		}
	}

	if _, ok := sets[DefaultTopic][DefaultDifficulty]; !ok {
		return nil, fmt.Errorf("question bank has no %s/%s set", DefaultTopic, DefaultDifficulty)
	}

	return &QuestionBank{sets: sets}, nil
}

// WithShuffle enables Fisher-Yates shuffling of fallback sets using the given seed
func (qb *QuestionBank) WithShuffle(seed uint64) *QuestionBank {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	qb.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return qb
}

// WithRandomShuffle enables shuffling seeded from the clock
func (qb *QuestionBank) WithRandomShuffle() *QuestionBank {
	return qb.WithShuffle(uint64(time.Now().UnixNano()))
}

// Questions resolves topic and difficulty to a question set and returns it in bank order.
// An unknown topic falls back to the default topic's default difficulty; an unknown difficulty
// falls back to the topic's default difficulty, then to the default topic's.
func (qb *QuestionBank) Questions(topic, difficulty string) []Question {
	set := qb.resolve(topic, difficulty)
	out := make([]Question, len(set))
	for i, q := range set {
		out[i] = q.clone()
	}
	return out
}

// Fallback returns up to count questions for topic and difficulty, shuffled when enabled
func (qb *QuestionBank) Fallback(topic, difficulty string, count int) []Question {
	questions := qb.Questions(topic, difficulty)

	qb.mu.Lock()
	if qb.rng != nil {
		qb.rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}
	qb.mu.Unlock()

	if count > 0 && count < len(questions) {
		questions = questions[:count]
	}
	return questions
}

// Topics returns the topic keys present in the bank, sorted
func (qb *QuestionBank) Topics() []string {
	topics := make([]string, 0, len(qb.sets))
	for topic := range qb.sets {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

func (qb *QuestionBank) resolve(topic, difficulty string) []Question {
	defaultSet := qb.sets[DefaultTopic][DefaultDifficulty]

	difficulties, ok := qb.sets[normalizeKey(topic)]
	if !ok {
		VerboseLog("Topic %q not in question bank, using %s/%s", topic, DefaultTopic, DefaultDifficulty)
		return defaultSet
	}

	if set, ok := difficulties[normalizeKey(difficulty)]; ok {
		return set
	}
	if set, ok := difficulties[DefaultDifficulty]; ok {
		VerboseLog("Difficulty %q not in question bank for %q, using %s", difficulty, topic, DefaultDifficulty)
		return set
	}
	return defaultSet
}

func (q Question) clone() Question {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	q.Options = options
	return q
}
