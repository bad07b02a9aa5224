package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront-system/internal/domain"
)

// The postgres suite needs Docker; it is opt-in.
const pgTestsEnv = "STOREFRONT_PG_TESTS"

type postgresStoreSuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	st        *Postgres
	container testcontainers.Container
}

func TestPostgresStoreSuite(t *testing.T) {
	if os.Getenv(pgTestsEnv) == "" {
		t.Skipf("set %s=1 to run the postgres store suite", pgTestsEnv)
	}
	suite.Run(t, new(postgresStoreSuite))
}

func (s *postgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute)),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(ctx, connStr)
	s.Require().NoError(err)

	// No broker in the suite: change notifications are best effort and the
	// nil client short-circuits them.
	s.st = NewPostgres(s.pool, nil)
	s.Require().NoError(s.st.EnsureSchema(ctx))
}

func (s *postgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *postgresStoreSuite) TestPutOrderAssignsCreatedAt() {
	t := s.T()
	ctx := context.Background()

	o := fakeOrder("alice", s.st.NewOrderKey())
	require.NoError(t, s.st.PutOrder(ctx, o))

	tree, err := s.st.Snapshot(ctx)
	require.NoError(t, err)
	got := tree["alice"][o.ID]

	require.False(t, got.CreatedAt.IsZero())
	require.Equal(t, o.Items, got.Items)
	require.Equal(t, o.Total, got.Total)
	require.Equal(t, domain.StatusPending, got.Status)
}

func (s *postgresStoreSuite) TestPatchStatus() {
	t := s.T()
	ctx := context.Background()

	o := fakeOrder("bob", s.st.NewOrderKey())
	require.NoError(t, s.st.PutOrder(ctx, o))

	require.NoError(t, s.st.PatchStatus(ctx, "bob", o.ID, domain.StatusCompleted))

	tree, err := s.st.Snapshot(ctx)
	require.NoError(t, err)
	got := tree["bob"][o.ID]
	require.Equal(t, domain.StatusCompleted, got.Status)
	require.Equal(t, o.Items, got.Items)

	require.ErrorIs(t, s.st.PatchStatus(ctx, "bob", "missing", domain.StatusOnHold), ErrNotFound)
}

func (s *postgresStoreSuite) TestRemoveOrder() {
	t := s.T()
	ctx := context.Background()

	o := fakeOrder("carol", s.st.NewOrderKey())
	require.NoError(t, s.st.PutOrder(ctx, o))
	require.NoError(t, s.st.RemoveOrder(ctx, "carol", o.ID))

	tree, err := s.st.Snapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, tree["carol"])

	require.ErrorIs(t, s.st.RemoveOrder(ctx, "carol", o.ID), ErrNotFound)
}
