package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"matheval-service/internal/domain"
)

// SampleSize caps how many questions a single domain contributes to a quiz.
const SampleSize = 5

// Loader reads per-domain question files and draws a quiz sample from them.
// Parsed banks are cached with a TTL; the sample itself is drawn fresh on
// every call so repeated quiz renders see different question sets.
type Loader struct {
	dir     string
	domains []string
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewLoader(dir string, domains []string, ttl time.Duration) *Loader {
	return &Loader{
		dir:     dir,
		domains: domains,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedBank),
	}
}

// Load returns a fresh sample of min(SampleSize, len(bank)) questions per
// domain. Domains without a bank file are omitted; an unreachable bank
// directory fails with domain.ErrBankUnavailable.
func (l *Loader) Load(ctx context.Context) (domain.QuizSample, error) {
	sample := domain.QuizSample{}
	for _, name := range l.domains {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		questions, err := l.bank(name)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			continue
		}
		sample[name] = l.draw(questions)
	}
	return sample, nil
}

// bank returns the full parsed question collection for one domain, reading
// through a TTL cache. Concurrent misses collapse to a single file read.
func (l *Loader) bank(name string) ([]domain.Question, error) {
	now := l.clock()

	l.mu.RLock()
	if entry, ok := l.cache[name]; ok && entry.expiresAt.After(now) {
		l.mu.RUnlock()
		return entry.questions, nil
	}
	l.mu.RUnlock()

	result, err, _ := l.sf.Do(name, func() (interface{}, error) {
		now := l.clock()
		l.mu.RLock()
		if entry, ok := l.cache[name]; ok && entry.expiresAt.After(now) {
			l.mu.RUnlock()
			return entry.questions, nil
		}
		l.mu.RUnlock()

		questions, err := l.readBank(name)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[name] = cachedBank{
			questions: questions,
			expiresAt: now.Add(l.ttlWithJitter()),
		}
		l.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (l *Loader) readBank(name string) ([]domain.Question, error) {
	path := filepath.Join(l.dir, name+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// A missing domain file just drops the domain; a missing bank
		// directory means the storage itself is gone.
		if _, statErr := os.Stat(l.dir); statErr != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, statErr)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse %s bank: %w", name, err)
	}
	for i := range questions {
		questions[i].Domain = name
	}
	return questions, nil
}

// draw picks min(SampleSize, len(questions)) questions uniformly at random
// without replacement.
func (l *Loader) draw(questions []domain.Question) []domain.Question {
	picked := make([]domain.Question, len(questions))
	copy(picked, questions)

	l.rndMu.Lock()
	l.rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	l.rndMu.Unlock()

	if len(picked) > SampleSize {
		picked = picked[:SampleSize]
	}
	return picked
}

func (l *Loader) ttlWithJitter() time.Duration {
	if l.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(l.ttl) / 10
	l.rndMu.Lock()
	defer l.rndMu.Unlock()
	return l.ttl + time.Duration(l.rnd.Int63n(jitterMax+1))
}
