package deps

import (
	"time"

	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
	"github.com/MrSnakeDoc/delicious2fluid/internal/sandbox/memstore"
)

type Deps struct {
	Logger    logger.Logger
	Store     *memstore.MemoryStore
	StartTime time.Time
	Version   string
	Users     map[string]string // username -> password accepted by basic auth
	TimeNow   func() time.Time  // for testing, defaults to time.Now
}
