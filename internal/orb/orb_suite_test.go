package orb_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOrb(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Orb Suite")
}
