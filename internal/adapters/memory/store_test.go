package memory_test

import (
	"testing"

	"github.com/cstaulbee/quickscope/internal/adapters/memory"
	"github.com/cstaulbee/quickscope/pkg/ports/tests"
)

func TestStore_Contract(t *testing.T) {
	tests.RunStateStoreContract(t, memory.NewStore())
}
