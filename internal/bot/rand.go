package bot

import (
	"math/rand"
	"sync"
	"time"
)

// rng drives every random choice a bot makes. Several games may run bots at
// once, so access goes through mu.
var (
	mu  sync.Mutex
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// SeedBotRng makes bot choices reproducible from seed.
func SeedBotRng(seed int64) {
	mu.Lock()
	rng = rand.New(rand.NewSource(seed))
	mu.Unlock()
}

// ResetBotRng reseeds bots from the clock.
func ResetBotRng() {
	SeedBotRng(time.Now().UnixNano())
}

func withRng[T any](f func(r *rand.Rand) T) T {
	mu.Lock()
	defer mu.Unlock()
	return f(rng)
}

func botIntn(n int) int {
	return withRng(func(r *rand.Rand) int { return r.Intn(n) })
}

func botFloat64() float64 {
	return withRng((*rand.Rand).Float64)
}

func botShuffle(n int, swap func(i, j int)) {
	withRng(func(r *rand.Rand) struct{} {
		r.Shuffle(n, swap)
		return struct{}{}
	})
}
