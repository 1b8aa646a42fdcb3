package checkout_test

import (
	"os"
	"testing"

	"storefront/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}
