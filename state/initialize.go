package state

import (
	"time"

	"svgsprite/config"
)

// newLocalEnv creates a new LocalEnv instance with default configuration.
// Logger is only created after command line is processed.
func newLocalEnv() *LocalEnv {
	env := &LocalEnv{start: time.Now()}
	if cfg, err := config.LoadConfiguration(""); err == nil {
		env.Cfg = cfg
	}
	return env
}
