//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"testing"
)

var fw *Framework

func TestMain(m *testing.M) {
	fw = NewFramework()

	if err := fw.Setup(); err != nil {
		fmt.Printf("e2e setup failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	fw.Teardown()
	os.Exit(code)
}
