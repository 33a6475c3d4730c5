package repository

import (
	"os"
	"testing"

	"github.com/okian/podium/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}
