package payments

import (
	"math/rand"
	"sync"
	"time"

	"github.com/lalaavipsha/microservices-platform/internal/domain"
)

const (
	minProcessing = 100 * time.Millisecond
	maxProcessing = 500 * time.Millisecond
)

// Processor simulates a synchronous external payment gateway: it blocks
// for a sampled processing duration, then approves or declines. The
// outcome is terminal; there is no in-flight state. Both the random
// source and the sleep are injectable so tests can force either branch
// without real waits.
type Processor struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
	sleep       func(time.Duration)
}

func NewProcessor(successRate float64, rng *rand.Rand, sleep func(time.Duration)) *Processor {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Processor{
		rng:         rng,
		successRate: successRate,
		sleep:       sleep,
	}
}

// Process blocks for the simulated processing time and returns it along
// with the drawn outcome.
func (p *Processor) Process() (time.Duration, domain.PaymentStatus) {
	p.mu.Lock()
	duration := minProcessing + time.Duration(p.rng.Int63n(int64(maxProcessing-minProcessing)))
	approved := p.rng.Float64() < p.successRate
	p.mu.Unlock()

	p.sleep(duration)

	if approved {
		return duration, domain.PaymentStatusCompleted
	}
	return duration, domain.PaymentStatusFailed
}
