package process

import (
	"os"
	"testing"
	"time"
)

// fakeGameEnv turns the test binary into a long-running stand-in game.
const fakeGameEnv = "YAGT_FAKE_GAME"

func TestMain(m *testing.M) {
	if os.Getenv(fakeGameEnv) != "" {
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(m.Run())
}
