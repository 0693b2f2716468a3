package payments

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lalaavipsha/microservices-platform/internal/domain"
)

func TestProcessor_Process(t *testing.T) {
	t.Run("duration stays within the simulated window", func(t *testing.T) {
		var slept time.Duration
		p := NewProcessor(1.0, rand.New(rand.NewSource(1)), func(d time.Duration) { slept = d })

		for i := 0; i < 100; i++ {
			duration, _ := p.Process()
			assert.GreaterOrEqual(t, duration, minProcessing)
			assert.Less(t, duration, maxProcessing)
			assert.Equal(t, duration, slept)
		}
	})

	t.Run("rate 1 always completes", func(t *testing.T) {
		p := NewProcessor(1.0, rand.New(rand.NewSource(1)), func(time.Duration) {})
		for i := 0; i < 50; i++ {
			_, status := p.Process()
			assert.Equal(t, domain.PaymentStatusCompleted, status)
		}
	})

	t.Run("rate 0 always fails", func(t *testing.T) {
		p := NewProcessor(0, rand.New(rand.NewSource(1)), func(time.Duration) {})
		for i := 0; i < 50; i++ {
			_, status := p.Process()
			assert.Equal(t, domain.PaymentStatusFailed, status)
		}
	})
}
