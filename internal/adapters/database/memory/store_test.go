package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/general_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/general_ledger/internal/adapters/database/storetest"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
)

func TestMemoryStoreContract(t *testing.T) {
	suite.Run(t, &storetest.ContractSuite{
		NewProvider: func(t *testing.T) portsrepo.RepositoryProvider {
			repos, _ := memory.NewRepositoryProvider()
			return repos
		},
		ConcurrentCallers: 256,
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	vt := storetest.NewVoucherType(t, "GL", "2020-01-01", nil)
	require.NoError(t, store.CreateVoucherType(ctx, vt))

	// Mutating the caller's value after create must not leak into the store.
	_, err := vt.SetPrefix("XX_")
	require.NoError(t, err)

	versions, err := store.FindVoucherTypesBySlug(ctx, "GL")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "GL_", versions[0].Prefix())

	require.NoError(t, store.SaveTransaction(ctx, storetest.NewTransaction("GL_1", "GL", "2020-02-01", 7, 1, 2, "10")))
	loaded, err := store.FindTransactionByReference(ctx, "GL_1")
	require.NoError(t, err)
	loaded.Entries[0].AccountID = 99

	again, err := store.FindTransactionByReference(ctx, "GL_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Entries[0].AccountID)
	assert.Equal(t, 2, store.EntryCount())
}
