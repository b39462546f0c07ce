package testlog

import (
	"testing"

	"github.com/danmuck/mview/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logging.Infof("test=%s", t.Name())
}
