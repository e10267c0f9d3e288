package factory

import (
	"time"

	"github.com/kpane/banktally/internal/dependencies/mocks"
	realtimememory "github.com/kpane/banktally/internal/realtime/memory"
	"github.com/kpane/banktally/internal/storage/memory"
	"github.com/kpane/banktally/internal/testutil"
)

// TestApp bundles an App with its mockable dependencies
type TestApp struct {
	*App
	MemoryStorage *memory.Storage
	MemoryBus     *realtimememory.Bus
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
}

// NewTestApp creates an App wired for tests: in-memory storage and bus,
// mock clock and random, silent logger.
func NewTestApp() *TestApp {
	logger := testutil.NopLogger()
	store := memory.New()
	bus := realtimememory.New(logger)
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()

	return &TestApp{
		App:           newWithDependencies(store, bus, clk, rnd, logger),
		MemoryStorage: store,
		MemoryBus:     bus,
		MockClock:     clk,
		MockRandom:    rnd,
	}
}
