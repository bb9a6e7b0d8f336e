package testsupport_test

import (
	"testing"

	"ainews/domain"
	"ainews/internal/testsupport"
)

func TestMemoryRepositoryContract(t *testing.T) {
	testsupport.RunRepositoryContract(t, func(t *testing.T) domain.NewsRepository {
		return testsupport.NewMemoryRepository()
	})
}
