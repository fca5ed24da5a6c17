package observability

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/lnioctl/internal/logging"
)

// InitLogger wires the global logger to a console writer tagged with the
// application name. Level and writer options come from the logging package.
func InitLogger(app string) zerolog.Logger {
	logger := zerolog.New(logging.ConsoleWriter(os.Stderr)).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
